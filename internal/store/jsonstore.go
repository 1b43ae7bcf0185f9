package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/statline-ff/statline/internal/model"
)

type JSONStore struct {
	Root string // e.g. "data/raw"
}

func NewJSONStore(root string) *JSONStore {
	return &JSONStore{Root: root}
}

func (s *JSONStore) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *JSONStore) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

func (s *JSONStore) WriteRaw(rel string, body []byte, pretty bool) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if pretty {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			buf := &bytes.Buffer{}
			enc := json.NewEncoder(buf)
			enc.SetIndent("", "  ")
			_ = enc.Encode(v)
			body = buf.Bytes()
		}
	}

	return os.WriteFile(path, body, 0o644)
}

func (s *JSONStore) ReadRaw(rel string) ([]byte, error) {
	return os.ReadFile(s.Path(rel))
}

func PlayersPath() string {
	return "players.json"
}

func SeasonPath(season int) string {
	return filepath.Join("seasons", strconv.Itoa(season), "weekly.json")
}

// Players reads the roster.
func (s *JSONStore) Players() ([]model.Player, error) {
	raw, err := s.ReadRaw(PlayersPath())
	if err != nil {
		return nil, fmt.Errorf("players.json: %w", err)
	}
	var players []model.Player
	if err := json.Unmarshal(raw, &players); err != nil {
		return nil, fmt.Errorf("parse players.json: %w", err)
	}
	for i := range players {
		if pos, ok := model.ParsePosition(string(players[i].Position)); ok {
			players[i].Position = pos
		}
	}
	return players, nil
}

// Seasons lists the seasons with a directory under seasons/, newest first.
func (s *JSONStore) Seasons() ([]int, error) {
	dirs, err := os.ReadDir(s.Path("seasons"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		season, err := strconv.Atoi(d.Name())
		if err != nil {
			continue
		}
		out = append(out, season)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

// SeasonLog loads a season's weekly entries. A missing file is an empty season.
func (s *JSONStore) SeasonLog(season int) (model.SeasonLog, error) {
	out := model.SeasonLog{Season: season}
	raw, err := s.ReadRaw(SeasonPath(season))
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out.Entries); err != nil {
		return out, fmt.Errorf("parse seasons/%d/weekly.json: %w", season, err)
	}
	return out, nil
}
