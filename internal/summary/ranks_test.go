package summary

import (
	"testing"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/ranks"
	"github.com/statline-ff/statline/internal/store"
)

func sampleTables() *ranks.Tables {
	return ranks.FromScored(2024, model.Half, []ranks.Scored{
		{PlayerID: "wr1", Position: model.WR, Week: 1, Opponent: "KC", Points: 18.5},
		{PlayerID: "wr2", Position: model.WR, Week: 1, Opponent: "BUF", Points: 9},
		{PlayerID: "wr1", Position: model.WR, Week: 2, Opponent: "NYJ", Points: 4},
		{PlayerID: "qb1", Position: model.QB, Week: 2, Opponent: "NYJ", Points: 22.1},
	})
}

func TestBuildRankSummary_Buckets(t *testing.T) {
	s := BuildRankSummary(sampleTables())

	if len(s.Weeks) != 3 {
		t.Fatalf("Weeks len = %d, want 3", len(s.Weeks))
	}
	first := s.Weeks[0]
	if first.Week != 1 || first.Position != model.WR || len(first.Rows) != 2 || first.Rows[0].PlayerID != "wr1" {
		t.Errorf("first bucket = %+v", first)
	}
	// QB sorts before WR in the same week.
	if s.Weeks[1].Position != model.QB || s.Weeks[1].Week != 2 {
		t.Errorf("second bucket = %+v", s.Weeks[1])
	}
	if s.SeasonRanks[0].Position != model.QB {
		t.Errorf("season ranks not ordered by position: %+v", s.SeasonRanks)
	}
	if len(s.Defense[model.WR]) != 3 || s.Defense[model.WR][0].Team != "NYJ" {
		t.Errorf("defense WR = %+v", s.Defense[model.WR])
	}
}

func TestRankSummary_RoundTrip(t *testing.T) {
	st := store.NewJSONStore(t.TempDir())
	orig := sampleTables()
	if err := WriteRankSummary(st, BuildRankSummary(orig)); err != nil {
		t.Fatalf("WriteRankSummary error: %v", err)
	}
	if !st.Exists("ranks/2024/half.json") {
		t.Fatal("derived file not written at ranks/2024/half.json")
	}

	loaded, err := LoadRankSummary(st, 2024, model.Half)
	if err != nil {
		t.Fatalf("LoadRankSummary error: %v", err)
	}
	got := loaded.Tables()
	if got.Season != 2024 || got.Format != model.Half {
		t.Errorf("season/format = %d/%s", got.Season, got.Format)
	}
	for _, id := range []string{"wr1", "wr2", "qb1"} {
		for week := 1; week <= 2; week++ {
			want, wok := orig.Weekly.Rank(id, week)
			have, hok := got.Weekly.Rank(id, week)
			if want != have || wok != hok {
				t.Errorf("Rank(%s, %d) = %d,%v; want %d,%v", id, week, have, hok, want, wok)
			}
		}
		if orig.Seasons[id] != got.Seasons[id] {
			t.Errorf("season rank %s = %+v, want %+v", id, got.Seasons[id], orig.Seasons[id])
		}
	}
	if r, _ := got.Defense.Rank("KC", model.WR); r != 3 {
		t.Errorf("defense KC WR = %d, want 3", r)
	}
}

func TestLoadRankSummary_Missing(t *testing.T) {
	st := store.NewJSONStore(t.TempDir())
	if _, err := LoadRankSummary(st, 2024, model.PPR); err == nil {
		t.Error("expected error for missing derived file")
	}
}
