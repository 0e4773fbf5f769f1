package registry

import "time"

// Conn is the registry's view of a participant: something that can accept an
// outbound frame. Send must never block; it reports false when the connection
// cannot take the message (closed or backed up), in which case the caller
// just skips it.
type Conn interface {
	Send(data []byte) bool
}

// RoomParams carries the join parameters a connection presents when it asks
// for a room. For an existing room only ID and Password are looked at; the
// rest describes the room to create when the id is free.
type RoomParams struct {
	ID           string
	HasCamera    bool
	UserName     string
	IsPrivate    bool
	Password     string
	IsStreamOnly bool
	ChatOnly     bool
}

// Room is a named rendezvous point for connections exchanging signaling and
// chat. All fields except the participant set and the transmission flag are
// fixed at creation; the mutable parts are only touched by Registry methods
// under the registry lock.
type Room struct {
	ID           string
	HasCamera    bool
	ChatOnly     bool
	IsStreamOnly bool
	IsPrivate    bool
	UserName     string
	CreatedAt    time.Time

	creator        Conn
	passwordHash   string
	isTransmitting bool
	participants   map[Conn]struct{}
}

func newRoom(p RoomParams, passwordHash string, creator Conn, now time.Time) *Room {
	return &Room{
		ID:           p.ID,
		HasCamera:    p.HasCamera,
		ChatOnly:     p.ChatOnly,
		IsStreamOnly: p.IsStreamOnly,
		IsPrivate:    p.IsPrivate,
		UserName:     p.UserName,
		CreatedAt:    now,

		creator:        creator,
		passwordHash:   passwordHash,
		isTransmitting: p.HasCamera && !p.ChatOnly,
		participants:   make(map[Conn]struct{}),
	}
}

// Creator returns the connection that created the room. It never changes for
// the life of the room, so reading it needs no lock.
func (r *Room) Creator() Conn {
	return r.creator
}
