package signaling

import (
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ktfth/roleta-online/internal/metrics"
	"github.com/ktfth/roleta-online/internal/registry"
)

// errMissingRoomID rejects connections that never named a room.
var errMissingRoomID = errors.New("roomId is required")

// JoinParams are the connection-time parameters of the signaling endpoint,
// parsed from the upgrade request's query string.
type JoinParams struct {
	RoomID     string
	HasCamera  bool
	UserName   string
	IsPrivate  bool
	Password   string
	ChatOnly   bool
	StreamOnly bool
}

// Relay drives the per-connection protocol: join a room through the
// registry, forward envelopes between siblings, and clean up on departure.
// The server never interprets the signaling payload itself; apart from the
// transmission toggles it only looks at the type field.
type Relay struct {
	registry *registry.Registry
	logger   zerolog.Logger
}

// NewRelay creates a relay backed by reg.
func NewRelay(reg *registry.Registry, logger zerolog.Logger) *Relay {
	return &Relay{registry: reg, logger: logger}
}

// Serve owns conn for its whole life: it joins the room described by p,
// relays messages until the peer goes away, and runs the departure cleanup.
// A failed join gets an error envelope and a close; the connection is never
// added to the room in that case.
func (r *Relay) Serve(conn *websocket.Conn, p JoinParams) {
	client := newClient(conn, r.logger)
	go client.writePump()

	logger := client.logger.With().Str("room_id", p.RoomID).Str("user_name", p.UserName).Logger()

	sess, err := r.join(p, client)
	if err != nil {
		logger.Warn().Err(err).Msg("join rejected")
		metrics.JoinsRejected.WithLabelValues(rejectionReason(err)).Inc()
		client.Send(mustMarshal(errorMsg{Type: TypeError, Message: err.Error()}))
		client.shutdown()
		return
	}
	sess.logger = logger
	logger.Info().Msg("participant joined")

	client.readLoop(sess.handleMessage)

	sess.leave()
	client.shutdown()
	logger.Info().Msg("participant disconnected")
}

// join runs the CONNECTING transition: resolve the room via get-or-create,
// enter its participant set and announce the arrival to the others.
func (r *Relay) join(p JoinParams, conn registry.Conn) (*session, error) {
	if p.RoomID == "" {
		return nil, errMissingRoomID
	}

	room, err := r.registry.GetOrCreate(registry.RoomParams{
		ID:           p.RoomID,
		HasCamera:    p.HasCamera,
		UserName:     p.UserName,
		IsPrivate:    p.IsPrivate,
		Password:     p.Password,
		IsStreamOnly: p.StreamOnly,
		ChatOnly:     p.ChatOnly,
	}, conn)
	if err != nil {
		return nil, err
	}

	siblings, err := r.registry.Join(room.ID, conn)
	if err != nil {
		// The room vanished between get-or-create and join (reaped or its
		// creator left). Treat it like any other failed join.
		return nil, err
	}

	joined := mustMarshal(userJoinedMsg{
		Type:      TypeUserJoined,
		UserName:  p.UserName,
		HasCamera: p.HasCamera,
		ChatOnly:  p.ChatOnly,
	})
	for _, sibling := range siblings {
		sibling.Send(joined)
	}

	return &session{
		relay:    r,
		conn:     conn,
		roomID:   room.ID,
		chatOnly: room.ChatOnly,
		userName: p.UserName,
		creator:  room.Creator() == conn,
		logger:   r.logger,
	}, nil
}

// session is one JOINED connection. The room metadata captured here is
// immutable for the life of the room.
type session struct {
	relay    *Relay
	conn     registry.Conn
	roomID   string
	chatOnly bool
	userName string
	creator  bool
	logger   zerolog.Logger
}

// handleMessage processes one inbound frame: toggle the transmission flag
// when asked (never in a chat-only room) and forward the original bytes
// unchanged to every other participant. Unparseable payloads are logged and
// dropped; they never close the connection.
func (s *session) handleMessage(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.logger.Warn().Err(err).Msg("dropping malformed payload")
		return
	}

	switch env.Type {
	case TypeStartTransmitting:
		if !s.chatOnly {
			s.relay.registry.UpdateTransmission(s.roomID, true)
		}
	case TypeStopTransmitting:
		if !s.chatOnly {
			s.relay.registry.UpdateTransmission(s.roomID, false)
		}
	}

	s.relay.registry.Broadcast(s.roomID, raw, s.conn)
	metrics.MessagesRelayed.Inc()
}

// leave runs the close transition. The registry resolves the room's fate
// atomically; the matching notification goes out over the stable snapshot it
// returns.
func (s *session) leave() {
	out := s.relay.registry.Leave(s.roomID, s.conn)
	if !out.RoomFound {
		return
	}

	switch {
	case out.WasCreator:
		data := mustMarshal(creatorLeftMsg{
			Type:    TypeCreatorLeft,
			Message: "the room creator left and the room was closed",
		})
		for _, p := range out.Remaining {
			p.Send(data)
		}
	case !out.RoomDeleted:
		data := mustMarshal(userLeftMsg{Type: TypeUserLeft, UserName: s.userName})
		for _, p := range out.Remaining {
			p.Send(data)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, registry.ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, registry.ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, errMissingRoomID):
		return "missing_room_id"
	default:
		return "other"
	}
}
