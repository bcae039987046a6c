package worldserver

import (
	"fmt"
	"sync"

	"github.com/udisondev/la2go/internal/model"
)

// Zone is one of the three fixed world areas.
type Zone struct {
	ID         int
	Name       string
	SpawnPoint model.Location
}

// FixedZones enumerates the three zones the core ships with. Zone ids are
// stable and referenced by character records and EnterWorld handshakes.
var FixedZones = []Zone{
	{ID: 1, Name: "Aerheim", SpawnPoint: model.NewLocation(0, 0, 0, 0)},
	{ID: 2, Name: "Grüne Ebene", SpawnPoint: model.NewLocation(500, 0, 0, 0)},
	{ID: 3, Name: "Dunkler Wald", SpawnPoint: model.NewLocation(0, 0, 500, 0)},
}

// ErrChannelFull is returned by ZoneChannel.AddPlayer when the channel is at
// capacity.
var ErrChannelFull = fmt.Errorf("worldserver: channel is at capacity")

// ErrUnknownZone is returned when a zone id outside FixedZones is requested.
var ErrUnknownZone = fmt.Errorf("worldserver: unknown zone id")

// ZoneChannel is one instance of a zone: a bounded population of players
// and monsters sharing a SpatialGrid.
type ZoneChannel struct {
	ZoneID     int
	ChannelID  int
	maxPlayers int

	mu       sync.RWMutex
	players  map[uint32]*model.PlayerEntity
	monsters map[uint32]*model.MonsterEntity
	grid     *SpatialGrid
}

// NewZoneChannel constructs an empty channel.
func NewZoneChannel(zoneID, channelID, maxPlayers int) *ZoneChannel {
	return &ZoneChannel{
		ZoneID:     zoneID,
		ChannelID:  channelID,
		maxPlayers: maxPlayers,
		players:    make(map[uint32]*model.PlayerEntity),
		monsters:   make(map[uint32]*model.MonsterEntity),
		grid:       NewSpatialGrid(),
	}
}

// Grid returns the channel's spatial index.
func (c *ZoneChannel) Grid() *SpatialGrid { return c.grid }

// PlayerCount returns the number of players currently in the channel.
func (c *ZoneChannel) PlayerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.players)
}

// AddPlayer inserts a player, refusing when the channel is already at
// maxPlayers.
func (c *ZoneChannel) AddPlayer(p *model.PlayerEntity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.players) >= c.maxPlayers {
		return ErrChannelFull
	}
	c.players[p.ObjectID()] = p
	loc := p.Location()
	c.grid.Insert(p.ObjectID(), loc.X, loc.Z)
	return nil
}

// RemovePlayer removes a player by object id, if present.
func (c *ZoneChannel) RemovePlayer(objectID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.players[objectID]
	if !ok {
		return
	}
	delete(c.players, objectID)
	loc := p.Location()
	c.grid.Remove(objectID, loc.X, loc.Z)
}

// Player looks up a player by object id.
func (c *ZoneChannel) Player(objectID uint32) (*model.PlayerEntity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.players[objectID]
	return p, ok
}

// Players returns a point-in-time snapshot slice of all players.
func (c *ZoneChannel) Players() []*model.PlayerEntity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.PlayerEntity, 0, len(c.players))
	for _, p := range c.players {
		out = append(out, p)
	}
	return out
}

// AddMonster inserts a monster into the channel and its spatial grid.
func (c *ZoneChannel) AddMonster(m *model.MonsterEntity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monsters[m.ObjectID()] = m
	loc := m.Location()
	c.grid.Insert(m.ObjectID(), loc.X, loc.Z)
}

// RemoveMonster removes a monster by object id, if present.
func (c *ZoneChannel) RemoveMonster(objectID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.monsters[objectID]
	if !ok {
		return
	}
	delete(c.monsters, objectID)
	loc := m.Location()
	c.grid.Remove(objectID, loc.X, loc.Z)
}

// Monster looks up a monster by object id.
func (c *ZoneChannel) Monster(objectID uint32) (*model.MonsterEntity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.monsters[objectID]
	return m, ok
}

// Monsters returns a point-in-time snapshot slice of all monsters.
func (c *ZoneChannel) Monsters() []*model.MonsterEntity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.MonsterEntity, 0, len(c.monsters))
	for _, m := range c.monsters {
		out = append(out, m)
	}
	return out
}

// Entity resolves any object id to either a player or a monster.
func (c *ZoneChannel) Entity(objectID uint32) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.players[objectID]; ok {
		return p, true
	}
	if m, ok := c.monsters[objectID]; ok {
		return m, true
	}
	return nil, false
}

// ZoneManager owns the fixed set of zones and, per zone, an ordered list of
// channels created on demand.
type ZoneManager struct {
	maxPlayersPerChannel int

	mu       sync.Mutex
	zones    map[int]Zone
	channels map[int][]*ZoneChannel
}

// NewZoneManager constructs a manager over FixedZones.
func NewZoneManager(maxPlayersPerChannel int) *ZoneManager {
	zones := make(map[int]Zone, len(FixedZones))
	for _, z := range FixedZones {
		zones[z.ID] = z
	}
	return &ZoneManager{
		maxPlayersPerChannel: maxPlayersPerChannel,
		zones:                zones,
		channels:             make(map[int][]*ZoneChannel),
	}
}

// Zone returns the fixed zone definition for zoneID.
func (m *ZoneManager) Zone(zoneID int) (Zone, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[zoneID]
	return z, ok
}

// BestChannel returns the first channel in zoneID with spare capacity,
// creating a new one with the next sequential channel id if all existing
// channels are full. Channel deletion is never
// supported; population only shrinks via disconnect. created reports
// whether this call allocated a fresh channel, so the caller can seed its
// monster population exactly once.
func (m *ZoneManager) BestChannel(zoneID int) (ch *ZoneChannel, created bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.zones[zoneID]; !ok {
		return nil, false, fmt.Errorf("zone %d: %w", zoneID, ErrUnknownZone)
	}

	for _, existing := range m.channels[zoneID] {
		if existing.PlayerCount() < m.maxPlayersPerChannel {
			return existing, false, nil
		}
	}

	ch = NewZoneChannel(zoneID, len(m.channels[zoneID]), m.maxPlayersPerChannel)
	m.channels[zoneID] = append(m.channels[zoneID], ch)
	return ch, true, nil
}

// Channel returns an already-created channel by (zoneID, channelID).
func (m *ZoneManager) Channel(zoneID, channelID int) (*ZoneChannel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chans := m.channels[zoneID]
	if channelID < 0 || channelID >= len(chans) {
		return nil, false
	}
	return chans[channelID], true
}

// Channels returns every existing channel for a zone, in creation order.
func (m *ZoneManager) Channels(zoneID int) []*ZoneChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ZoneChannel, len(m.channels[zoneID]))
	copy(out, m.channels[zoneID])
	return out
}

// AllChannels returns every channel across every zone, for tick iteration.
func (m *ZoneManager) AllChannels() []*ZoneChannel {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ZoneChannel
	for _, chans := range m.channels {
		out = append(out, chans...)
	}
	return out
}
