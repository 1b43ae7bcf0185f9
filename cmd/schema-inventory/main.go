package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/statline-ff/statline/internal/logging"
	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/store"
	"github.com/statline-ff/statline/internal/summary"
)

const (
	InventoryPath   = "stat_inventory.json"
	unknownPosition = "UNKNOWN"
)

type TypeSet map[string]struct{}

type SchemaMap map[string]TypeSet

type Inventory struct {
	GeneratedAtUTC string              `json:"generated_at_utc"`
	RawRoot        string              `json:"raw_root"`
	Seasons        []int               `json:"seasons"`
	EntriesScanned int                 `json:"entries_scanned"`
	EntryFields    []Field             `json:"entry_fields"`
	Positions      []PositionInventory `json:"positions"`
}

type Field struct {
	Path  string   `json:"path"`
	Types []string `json:"types"`
}

// PositionInventory counts how often each stat key appears for one position.
type PositionInventory struct {
	Position string    `json:"position"`
	Entries  int       `json:"entries"`
	Stats    []StatKey `json:"stats"`
}

type StatKey struct {
	Key     string   `json:"key"`
	Present int      `json:"present"`
	Nulls   int      `json:"nulls"`
	Types   []string `json:"types"`
}

func main() {
	var (
		rawRoot  = flag.String("raw-root", "data/raw", "root directory for raw JSON")
		outRoot  = flag.String("derived-root", "data/derived", "root directory for the inventory")
		maxFiles = flag.Int("max-files", 0, "max season files to scan, newest first (0 = no limit)")
	)
	flag.Parse()

	log := logrus.NewEntry(logging.New("info", "text")).WithField("component", "schema-inventory")
	inv, err := build(store.NewJSONStore(*rawRoot), *maxFiles, log)
	if err != nil {
		log.WithError(err).Error("inventory failed")
		os.Exit(1)
	}
	out := store.NewJSONStore(*outRoot)
	if err := summary.WriteJSON(out, InventoryPath, inv); err != nil {
		log.WithError(err).Error("write inventory")
		os.Exit(1)
	}
	log.WithField("path", out.Path(InventoryPath)).Info("wrote inventory")
}

type statCounter struct {
	entries int
	present map[string]int
	nulls   map[string]int
	types   SchemaMap
}

func build(raw *store.JSONStore, maxFiles int, log *logrus.Entry) (Inventory, error) {
	inv := Inventory{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		RawRoot:        raw.Root,
		Seasons:        make([]int, 0),
		Positions:      make([]PositionInventory, 0),
	}

	positions := make(map[string]string)
	players, err := raw.Players()
	switch {
	case err == nil:
		for _, p := range players {
			positions[p.ID] = string(p.Position)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Warn("players.json missing, every entry counts as unknown")
	default:
		return inv, err
	}

	seasons, err := raw.Seasons()
	if err != nil {
		return inv, err
	}
	if maxFiles > 0 && len(seasons) > maxFiles {
		seasons = seasons[:maxFiles]
	}

	shape := make(SchemaMap)
	counters := make(map[string]*statCounter)
	for _, season := range seasons {
		body, err := raw.ReadRaw(store.SeasonPath(season))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return inv, err
		}
		var entries []map[string]any
		if err := json.Unmarshal(body, &entries); err != nil {
			log.WithError(err).WithField("season", season).Warn("skipping unparseable season file")
			continue
		}
		inv.Seasons = append(inv.Seasons, season)

		for _, e := range entries {
			inv.EntriesScanned++
			walkSchema(e, "$", shape)

			id, _ := e["player_id"].(string)
			pos, ok := positions[id]
			if !ok {
				pos = unknownPosition
			}
			c := counters[pos]
			if c == nil {
				c = &statCounter{present: make(map[string]int), nulls: make(map[string]int), types: make(SchemaMap)}
				counters[pos] = c
			}
			c.entries++
			stats, _ := e["stats"].(map[string]any)
			for k, v := range stats {
				c.present[k]++
				if v == nil {
					c.nulls[k]++
				}
				addType(c.types, k, typeName(v))
			}
		}
		log.WithFields(logrus.Fields{"season": season, "entries": len(entries)}).Info("season scanned")
	}
	sort.Ints(inv.Seasons)
	inv.EntryFields = schemaToFields(shape)

	order := make([]string, 0, len(counters))
	for pos := range counters {
		order = append(order, pos)
	}
	sort.Slice(order, func(i, j int) bool { return positionIndex(order[i]) < positionIndex(order[j]) })
	for _, pos := range order {
		c := counters[pos]
		keys := make([]string, 0, len(c.present))
		for k := range c.present {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pi := PositionInventory{Position: pos, Entries: c.entries, Stats: make([]StatKey, 0, len(keys))}
		for _, k := range keys {
			pi.Stats = append(pi.Stats, StatKey{
				Key:     k,
				Present: c.present[k],
				Nulls:   c.nulls[k],
				Types:   sortedTypes(c.types[k]),
			})
		}
		inv.Positions = append(inv.Positions, pi)
	}
	return inv, nil
}

// positionIndex orders QB RB WR TE K DEF, then anything else by name.
func positionIndex(pos string) string {
	for i, p := range []model.Position{model.QB, model.RB, model.WR, model.TE, model.K, model.DEF} {
		if string(p) == pos {
			return fmt.Sprintf("%d", i)
		}
	}
	return "9" + pos
}

func walkSchema(v any, path string, schema SchemaMap) {
	switch x := v.(type) {
	case map[string]any:
		addType(schema, path, "object")
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkSchema(x[k], path+"."+k, schema)
		}
	case []any:
		addType(schema, path, "array")
		for _, item := range x {
			walkSchema(item, path+"[]", schema)
		}
		if len(x) == 0 {
			addType(schema, path+"[]", "unknown")
		}
	default:
		addType(schema, path, typeName(v))
	}
}

func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func addType(schema SchemaMap, path string, typ string) {
	set, ok := schema[path]
	if !ok {
		set = make(TypeSet)
		schema[path] = set
	}
	set[typ] = struct{}{}
}

func sortedTypes(set TypeSet) []string {
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func schemaToFields(schema SchemaMap) []Field {
	paths := make([]string, 0, len(schema))
	for p := range schema {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	fields := make([]Field, 0, len(paths))
	for _, p := range paths {
		fields = append(fields, Field{
			Path:  p,
			Types: sortedTypes(schema[p]),
		})
	}
	return fields
}
