package models

// RoomSummary is one entry of the public room listing. Private rooms are
// never listed, so IsPrivate is always false here; the field is kept because
// the web client reads it.
type RoomSummary struct {
	ID             string `json:"id"`
	IsPrivate      bool   `json:"isPrivate"`
	ChatOnly       bool   `json:"chatOnly"`
	IsStreamOnly   bool   `json:"isStreamOnly"`
	UserCount      int    `json:"userCount"`
	UserName       string `json:"userName"`
	HasCamera      bool   `json:"hasCamera"`
	IsTransmitting bool   `json:"isTransmitting"`
}

// RoomDetail is the single-room view returned by GET /rooms/{id}. It carries
// only information safe to show before joining; the password never appears.
type RoomDetail struct {
	ID             string `json:"id"`
	IsPrivate      bool   `json:"isPrivate"`
	UserCount      int    `json:"userCount"`
	HasCamera      bool   `json:"hasCamera"`
	IsTransmitting bool   `json:"isTransmitting"`
	UserName       string `json:"userName"`
}
