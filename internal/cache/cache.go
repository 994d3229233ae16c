package cache

import (
	"sync"

	"github.com/biocommander/engine/pkg/core"
)

type playerKey struct {
	gameID uint32
	key    core.Identity
}

type entityKey struct {
	gameID uint32
	id     uint32
}

// MatchCache holds the last committed state of every open match so the worker
// can build an action's entity bundle without a storage round trip.
// Values are stored and returned as copies.
type MatchCache struct {
	m       sync.RWMutex
	games   map[uint32]core.Game
	players map[playerKey]core.Player
	zones   map[entityKey]core.Zone
	units   map[entityKey]core.Unit
	ended   map[uint32]struct{}
}

func NewMatchCache() *MatchCache {
	return &MatchCache{
		games:   make(map[uint32]core.Game),
		players: make(map[playerKey]core.Player),
		zones:   make(map[entityKey]core.Zone),
		units:   make(map[entityKey]core.Unit),
		ended:   make(map[uint32]struct{}),
	}
}

func (c *MatchCache) GetGame(id uint32) (core.Game, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	g, ok := c.games[id]
	return g, ok
}

func (c *MatchCache) PutGame(g core.Game) {
	c.m.Lock()
	defer c.m.Unlock()
	c.games[g.GameID] = g
}

func (c *MatchCache) GetPlayer(gameID uint32, key core.Identity) (core.Player, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	p, ok := c.players[playerKey{gameID, key}]
	return p, ok
}

func (c *MatchCache) PutPlayer(p core.Player) {
	c.m.Lock()
	defer c.m.Unlock()
	c.players[playerKey{p.GameID, p.Key}] = p
}

// Players returns the seated players of a match ordered by seat.
func (c *MatchCache) Players(gameID uint32) []core.Player {
	c.m.RLock()
	defer c.m.RUnlock()
	var out []core.Player
	for k, p := range c.players {
		if k.gameID == gameID {
			out = append(out, p)
		}
	}
	if len(out) == 2 && out[0].PlayerID > out[1].PlayerID {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

func (c *MatchCache) GetZone(gameID, zoneID uint32) (core.Zone, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	z, ok := c.zones[entityKey{gameID, zoneID}]
	return z, ok
}

func (c *MatchCache) PutZone(z core.Zone) {
	c.m.Lock()
	defer c.m.Unlock()
	c.zones[entityKey{z.GameID, z.ZoneID}] = z
}

func (c *MatchCache) GetUnit(gameID, unitID uint32) (core.Unit, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	u, ok := c.units[entityKey{gameID, unitID}]
	return u, ok
}

func (c *MatchCache) PutUnit(u core.Unit) {
	c.m.Lock()
	defer c.m.Unlock()
	c.units[entityKey{u.GameID, u.UnitID}] = u
}

func (c *MatchCache) DeleteUnit(gameID, unitID uint32) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.units, entityKey{gameID, unitID})
}

// Evict drops every entity of a match.
func (c *MatchCache) Evict(gameID uint32) {
	c.m.Lock()
	defer c.m.Unlock()
	c.evict(gameID)
}

// End evicts a match and marks it closed. Ended reports true for it from
// then on.
func (c *MatchCache) End(gameID uint32) {
	c.m.Lock()
	defer c.m.Unlock()
	c.evict(gameID)
	c.ended[gameID] = struct{}{}
}

func (c *MatchCache) Ended(gameID uint32) bool {
	c.m.RLock()
	defer c.m.RUnlock()
	_, ok := c.ended[gameID]
	return ok
}

func (c *MatchCache) evict(gameID uint32) {
	delete(c.games, gameID)
	for k := range c.players {
		if k.gameID == gameID {
			delete(c.players, k)
		}
	}
	for k := range c.zones {
		if k.gameID == gameID {
			delete(c.zones, k)
		}
	}
	for k := range c.units {
		if k.gameID == gameID {
			delete(c.units, k)
		}
	}
}

// Len returns the number of cached matches.
func (c *MatchCache) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.games)
}

// MatchLocks serialises the load, rules and commit cycle of each match.
// An entry lives while some caller holds or waits for it.
type MatchLocks struct {
	mu    sync.Mutex
	locks map[uint32]*matchLock
}

type matchLock struct {
	sync.Mutex
	refs int
}

func NewMatchLocks() *MatchLocks {
	return &MatchLocks{locks: make(map[uint32]*matchLock)}
}

// Lock acquires the lock of gameID and returns its release function.
func (l *MatchLocks) Lock(gameID uint32) func() {
	l.mu.Lock()
	m, ok := l.locks[gameID]
	if !ok {
		m = &matchLock{}
		l.locks[gameID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		if m.refs--; m.refs == 0 {
			delete(l.locks, gameID)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of matches with a held or awaited lock.
func (l *MatchLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}

func (c *SafeCounter) Dec() {
	c.mu.Lock()
	if c.v > 0 {
		c.v--
	}
	c.mu.Unlock()
}
