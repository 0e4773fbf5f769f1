package registry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ktfth/roleta-online/internal/metrics"
	"github.com/ktfth/roleta-online/internal/models"
)

// Registry owns the room directory. It is the single source of truth for
// which rooms exist and who is in them; one mutex guards the whole directory,
// which is enough at this scale since room bodies are small and every
// operation is O(participants).
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	logger zerolog.Logger
}

// New creates an empty registry.
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

// Create inserts a new room owned by creator. It fails with ErrDuplicateRoom
// when the id is taken; joins should go through GetOrCreate instead.
func (g *Registry) Create(p RoomParams, creator Conn) (*Room, error) {
	hash, err := hashPassword(p)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	if _, ok := g.rooms[p.ID]; ok {
		g.mu.Unlock()
		return nil, ErrDuplicateRoom
	}
	room := newRoom(p, hash, creator, time.Now())
	g.rooms[p.ID] = room
	g.mu.Unlock()

	g.logCreated(room)
	return room, nil
}

// GetOrCreate returns the room with the given id, creating it with conn as
// creator when it does not exist. For an existing private room the supplied
// password is checked and a mismatch fails with ErrWrongPassword. An existing
// room is returned unchanged: the caller's UserName/HasCamera and the rest of
// the parameters never overwrite the room's original metadata.
//
// Concurrent calls with the same id are linearized by the registry lock: the
// first to insert becomes creator and later callers converge to the lookup
// path.
func (g *Registry) GetOrCreate(p RoomParams, conn Conn) (*Room, error) {
	// Hashing is slow on purpose, keep it outside the lock. The hash is only
	// used when this call ends up creating the room.
	hash, err := hashPassword(p)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	if room, ok := g.rooms[p.ID]; ok {
		private, stored := room.IsPrivate, room.passwordHash
		g.mu.Unlock()
		if private && bcrypt.CompareHashAndPassword([]byte(stored), []byte(p.Password)) != nil {
			return nil, ErrWrongPassword
		}
		return room, nil
	}
	room := newRoom(p, hash, conn, time.Now())
	g.rooms[p.ID] = room
	g.mu.Unlock()

	g.logCreated(room)
	return room, nil
}

// Join adds conn to the room's participant set and returns a snapshot of the
// other participants, for the caller to announce itself to.
func (g *Registry) Join(id string, conn Conn) ([]Conn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.participants[conn] = struct{}{}
	metrics.ConnectionsActive.Inc()
	return snapshotExcept(room, conn), nil
}

// LeaveOutcome describes what a departure did to the room, so the relay can
// run the matching notification without holding the registry lock.
type LeaveOutcome struct {
	// RoomFound is false when the room was already gone (e.g. reaped).
	RoomFound bool
	// WasCreator reports that the leaving connection created the room. The
	// room is always deleted in that case.
	WasCreator bool
	// RoomDeleted reports that the departure removed the room.
	RoomDeleted bool
	// Remaining is a stable snapshot of the participants still present after
	// the removal.
	Remaining []Conn
}

// Leave removes conn from the room's participant set (a no-op when it was
// never added) and resolves the room's fate atomically: the creator leaving
// deletes the room no matter who is left, an empty room stops transmitting
// and is deleted, and otherwise the room stays.
func (g *Registry) Leave(id string, conn Conn) LeaveOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	if !ok {
		return LeaveOutcome{}
	}

	if _, present := room.participants[conn]; present {
		delete(room.participants, conn)
		metrics.ConnectionsActive.Dec()
	}

	out := LeaveOutcome{RoomFound: true}
	switch {
	case room.creator == conn:
		out.WasCreator = true
		out.RoomDeleted = true
		out.Remaining = snapshotExcept(room, nil)
		g.deleteLocked(room)
	case len(room.participants) == 0:
		room.isTransmitting = false
		out.RoomDeleted = true
		g.deleteLocked(room)
	default:
		out.Remaining = snapshotExcept(room, nil)
	}
	return out
}

// Broadcast delivers data to every participant of the room except exclude.
// Sends are best effort: a participant whose transport cannot take the
// message is skipped. Returns the number of deliveries attempted.
func (g *Registry) Broadcast(id string, data []byte, exclude Conn) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	if !ok {
		return 0
	}
	n := 0
	for p := range room.participants {
		if p == exclude {
			continue
		}
		p.Send(data)
		n++
	}
	return n
}

// List returns summaries of the public rooms. Private rooms are excluded
// entirely, and no variant of the result ever carries a password.
func (g *Registry) List() []models.RoomSummary {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]models.RoomSummary, 0, len(g.rooms))
	for _, room := range g.rooms {
		if room.IsPrivate {
			continue
		}
		out = append(out, models.RoomSummary{
			ID:             room.ID,
			IsPrivate:      room.IsPrivate,
			ChatOnly:       room.ChatOnly,
			IsStreamOnly:   room.IsStreamOnly,
			UserCount:      len(room.participants),
			UserName:       room.UserName,
			HasCamera:      room.HasCamera,
			IsTransmitting: room.isTransmitting,
		})
	}
	return out
}

// Get returns the pre-join view of a single room.
func (g *Registry) Get(id string) (models.RoomDetail, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	if !ok {
		return models.RoomDetail{}, false
	}
	return models.RoomDetail{
		ID:             room.ID,
		IsPrivate:      room.IsPrivate,
		UserCount:      len(room.participants),
		HasCamera:      room.HasCamera,
		IsTransmitting: room.isTransmitting,
		UserName:       room.UserName,
	}, true
}

// Remove deletes the room if present; no-op otherwise.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[id]; ok {
		g.deleteLocked(room)
	}
}

// UpdateTransmission sets the room's transmission flag. No-op when the room
// is absent. Callers are responsible for not toggling chat-only rooms.
func (g *Registry) UpdateTransmission(id string, transmitting bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[id]; ok {
		room.isTransmitting = transmitting
	}
}

// VerifyPassword reports whether password grants access to the room: true
// for any public room, and for a private room only on an exact match. This
// is the single password gate shared by the websocket join and the HTTP
// verify endpoint.
func (g *Registry) VerifyPassword(id, password string) (bool, error) {
	g.mu.Lock()
	room, ok := g.rooms[id]
	if !ok {
		g.mu.Unlock()
		return false, ErrRoomNotFound
	}
	private, stored := room.IsPrivate, room.passwordHash
	g.mu.Unlock()

	if !private {
		return true, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, nil
}

// Len returns the number of rooms in the directory.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Sweep deletes every room that is older than ttl relative to now, or whose
// participant set is empty. It returns the number of rooms removed. This is
// the reaper's safety net for rooms whose close events never fired.
func (g *Registry) Sweep(now time.Time, ttl time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for _, room := range g.rooms {
		if now.Sub(room.CreatedAt) > ttl || len(room.participants) == 0 {
			g.deleteLocked(room)
			removed++
		}
	}
	return removed
}

// deleteLocked removes the room and settles the gauges. Caller holds g.mu.
func (g *Registry) deleteLocked(room *Room) {
	delete(g.rooms, room.ID)
	metrics.RoomsActive.Dec()
	if n := len(room.participants); n > 0 {
		metrics.ConnectionsActive.Sub(float64(n))
	}
	g.logger.Debug().Str("room_id", room.ID).Msg("room removed")
}

func (g *Registry) logCreated(room *Room) {
	roomType := "public"
	if room.IsPrivate {
		roomType = "private"
	}
	metrics.RoomsActive.Inc()
	metrics.RoomsCreated.WithLabelValues(roomType).Inc()
	g.logger.Info().
		Str("room_id", room.ID).
		Str("room_type", roomType).
		Bool("chat_only", room.ChatOnly).
		Bool("stream_only", room.IsStreamOnly).
		Msg("room created")
}

// hashPassword enforces the private-room invariant and hashes the password.
// Public rooms carry no password at all.
func hashPassword(p RoomParams) (string, error) {
	if !p.IsPrivate {
		return "", nil
	}
	if p.Password == "" {
		return "", ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func snapshotExcept(room *Room, exclude Conn) []Conn {
	if len(room.participants) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(room.participants))
	for p := range room.participants {
		if p == exclude {
			continue
		}
		out = append(out, p)
	}
	return out
}
