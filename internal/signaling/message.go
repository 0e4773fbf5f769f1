package signaling

import "encoding/json"

// Envelope types the server builds or inspects. Everything else (offer,
// answer, ice-candidate, chat, ...) is opaque payload relayed verbatim.
const (
	TypeUserJoined        = "user-joined"
	TypeUserLeft          = "user-left"
	TypeCreatorLeft       = "creator-left"
	TypeStartTransmitting = "start-transmitting"
	TypeStopTransmitting  = "stop-transmitting"
	TypeError             = "error"
)

// envelope is the minimal view of an inbound frame: just enough to route on
// the type field. The original bytes are what gets forwarded.
type envelope struct {
	Type string `json:"type"`
}

type userJoinedMsg struct {
	Type      string `json:"type"`
	UserName  string `json:"userName"`
	HasCamera bool   `json:"hasCamera"`
	ChatOnly  bool   `json:"chatOnly"`
}

type userLeftMsg struct {
	Type     string `json:"type"`
	UserName string `json:"userName"`
}

type creatorLeftMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// mustMarshal encodes server-built envelopes. The types above cannot fail to
// marshal.
func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
