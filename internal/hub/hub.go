package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"signroom-backend/internal/cache"
	"signroom-backend/internal/geometry"
	"signroom-backend/internal/store"
)

var (
	// ErrRoomNotFound 룸 없음
	ErrRoomNotFound = errors.New("room not found")
)

// conn is the subset of *websocket.Conn the hub writes to. Tests
// substitute a recorder.
type conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Loader rebuilds a room's persisted state on first access. The
// registry is a cache over this store, not durable across restarts.
type Loader interface {
	LoadRoom(id string) (*store.RoomState, error)
}

// SignatureCache retains per-slot stroke lists across room reloads.
// *cache.RedisClient satisfies it; tests substitute an in-memory map.
type SignatureCache interface {
	AppendStroke(ctx context.Context, roomID, side string, index int, s *cache.CachedStroke) error
	GetStrokes(ctx context.Context, roomID, side string, index int) ([]cache.CachedStroke, error)
	ClearSlot(ctx context.Context, roomID, side string, index int) error
	DeleteRoom(ctx context.Context, roomID string) error
}

// =============================================================================
// Room Hub - 룸 단위 WebSocket 레지스트리
// =============================================================================

// RoomHub manages all live rooms and their participants.
type RoomHub struct {
	rooms    map[string]*Room
	mu       sync.RWMutex
	loader   Loader
	sigCache SignatureCache
}

// Room is one live signing session: slot geometry, accumulated
// signatures, and connected participants.
type Room struct {
	ID          string
	Title       string
	OwnerID     int64
	StageWidth  int
	StageHeight int

	slotsA       []geometry.Rect
	slotsB       []geometry.Rect
	records      map[slotKey]*SignatureRecord
	participants map[string]*Participant
	mu           sync.RWMutex
	hub          *RoomHub
}

type slotKey struct {
	Side  geometry.Side
	Index int
}

// Participant is one live connection bound to a room and, for signers,
// to exactly one (side, index) pair fixed at join time.
type Participant struct {
	ID    string
	Role  string
	Side  geometry.Side
	Index int

	conn    conn
	writeMu sync.Mutex
}

// NewRoomHub creates a new RoomHub instance. sigCache may be nil; the
// hub then keeps signatures in memory only.
func NewRoomHub(loader Loader, sigCache SignatureCache) *RoomHub {
	return &RoomHub{
		rooms:    make(map[string]*Room),
		loader:   loader,
		sigCache: sigCache,
	}
}

// GetRoom returns the live room, rebuilding it from the store on first
// access.
func (h *RoomHub) GetRoom(roomID string) (*Room, error) {
	h.mu.RLock()
	room, exists := h.rooms[roomID]
	h.mu.RUnlock()
	if exists {
		return room, nil
	}

	state, err := h.loader.LoadRoom(roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Another connection may have registered the room while we were
	// loading; the first registration wins.
	if room, exists := h.rooms[roomID]; exists {
		return room, nil
	}

	room = &Room{
		ID:           state.ID,
		Title:        state.Title,
		OwnerID:      state.OwnerID,
		StageWidth:   state.StageWidth,
		StageHeight:  state.StageHeight,
		slotsA:       append([]geometry.Rect{}, state.SlotsA...),
		slotsB:       append([]geometry.Rect{}, state.SlotsB...),
		records:      make(map[slotKey]*SignatureRecord),
		participants: make(map[string]*Participant),
		hub:          h,
	}
	room.restoreSignatures()

	h.rooms[roomID] = room
	log.Printf("[RoomHub] Registered room: %s", roomID)

	return room, nil
}

// Peek returns a live room without touching the store.
func (h *RoomHub) Peek(roomID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[roomID]
	return room, ok
}

// RoomDeleted handles a room removed from the store: live subscribers
// are told first, then the room leaves the registry and the cache.
func (h *RoomHub) RoomDeleted(roomID string) {
	if room, ok := h.Peek(roomID); ok {
		room.Deleted()
		return
	}
	if h.sigCache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := h.sigCache.DeleteRoom(ctx, roomID); err != nil {
				log.Printf("[RoomHub] Failed to drop cached signatures for %s: %v", roomID, err)
			}
		}()
	}
}

// Evict drops a room from the registry.
func (h *RoomHub) Evict(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[roomID]; exists {
		delete(h.rooms, roomID)
		log.Printf("[RoomHub] Evicted room: %s", roomID)
	}
}

// restoreSignatures rebuilds retained SignatureRecords from Redis for
// every current slot. Called once while the room is not yet shared.
func (r *Room) restoreSignatures() {
	if r.hub.sigCache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	restore := func(side geometry.Side, slots []geometry.Rect) {
		for i := range slots {
			strokes, err := r.hub.sigCache.GetStrokes(ctx, r.ID, string(side), i)
			if err != nil {
				log.Printf("[Room %s] Failed to restore %s: %v", r.ID, geometry.Label(side, i), err)
				continue
			}
			if len(strokes) == 0 {
				continue
			}
			rec := &SignatureRecord{
				OriginalWidth:  strokes[0].SourceWidth,
				OriginalHeight: strokes[0].SourceHeight,
			}
			for _, s := range strokes {
				rec.Strokes = append(rec.Strokes, Stroke{Points: s.Points, Size: s.Size, Color: s.Color})
			}
			r.records[slotKey{Side: side, Index: i}] = rec
		}
	}
	restore(geometry.SideA, r.slotsA)
	restore(geometry.SideB, r.slotsB)
}

// =============================================================================
// Participants
// =============================================================================

// NewParticipant wraps a websocket connection for the hub.
func NewParticipant(id, role string, side geometry.Side, index int, c *websocket.Conn) *Participant {
	return &Participant{ID: id, Role: role, Side: side, Index: index, conn: c}
}

// Join registers a participant on the room channel.
func (r *Room) Join(p *Participant) {
	r.mu.Lock()
	r.participants[p.ID] = p
	total := len(r.participants)
	r.mu.Unlock()

	log.Printf("[Room %s] Joined: %s (role: %s), total: %d", r.ID, p.ID, p.Role, total)
}

// Leave removes a participant. An empty room is evicted from the
// registry; its signatures survive in the cache.
func (r *Room) Leave(participantID string) {
	r.mu.Lock()
	delete(r.participants, participantID)
	remaining := len(r.participants)
	r.mu.Unlock()

	log.Printf("[Room %s] Left: %s, remaining: %d", r.ID, participantID, remaining)

	if remaining == 0 {
		r.hub.Evict(r.ID)
	}
}

// ParticipantCount returns the number of live connections.
func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// =============================================================================
// Broadcast
// =============================================================================

// broadcast fans a message out to every participant. Fire-and-forget:
// a failed write is logged and never surfaced to the sender.
func (r *Room) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Room %s] Failed to marshal broadcast: %v", r.ID, err)
		return
	}

	r.mu.RLock()
	participants := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		participants = append(participants, p)
	}
	r.mu.RUnlock()

	for _, p := range participants {
		p.send(data)
	}
}

func (p *Participant) send(data []byte) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[Participant %s] Failed to send: %v", p.ID, err)
	}
}
