package engine

import (
	"sync"

	"github.com/statline-ff/statline/internal/model"
	"github.com/statline-ff/statline/internal/ranks"
)

type tableKey struct {
	season int
	format model.Format
}

type roster struct {
	byID      map[string]model.Player
	positions map[string]model.Position
}

// Cache memoises immutable inputs and the rank tables derived from them. It is
// never invalidated. Values are built outside the lock, so two callers that miss
// together may both build; the last store wins and both results are equal.
type Cache struct {
	mu     sync.RWMutex
	roster *roster
	logs   map[int]model.SeasonLog
	tables map[tableKey]*ranks.Tables

	tableBuilds int
}

func NewCache() *Cache {
	return &Cache{
		logs:   make(map[int]model.SeasonLog),
		tables: make(map[tableKey]*ranks.Tables),
	}
}

func (c *Cache) getRoster() *roster {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roster
}

func (c *Cache) putRoster(r *roster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster = r
}

func (c *Cache) getLog(season int) (model.SeasonLog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.logs[season]
	return l, ok
}

func (c *Cache) putLog(l model.SeasonLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs[l.Season] = l
}

func (c *Cache) getTables(season int, format model.Format) (*ranks.Tables, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[tableKey{season: season, format: format}]
	return t, ok
}

func (c *Cache) putTables(t *ranks.Tables) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[tableKey{season: t.Season, format: t.Format}] = t
	c.tableBuilds++
}

// TableBuilds counts how many rank tables have been stored.
func (c *Cache) TableBuilds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableBuilds
}
