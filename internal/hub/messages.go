package hub

import "signroom-backend/internal/geometry"

// Participant roles.
const (
	RoleAdmin  = "admin"
	RoleSigner = "signer"
)

// Message kinds on the room channel. The four broadcast kinds plus the
// join handshake are the entire wire vocabulary.
const (
	MsgJoin        = "join"
	MsgJoined      = "joined"
	MsgStroke      = "stroke"
	MsgClear       = "clear"
	MsgSlotsUpdate = "slots-update"
	MsgRoomDeleted = "room-deleted"
)

// JoinRequest declares a participant's role and, for signers, its slot
// binding. It must be the first message on a connection.
type JoinRequest struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Role   string `json:"role"` // admin | signer
	Side   string `json:"side,omitempty"`
	Index  int    `json:"index,omitempty"`
}

// JoinAck acknowledges a join synchronously before any other message
// for the participant is meaningful.
type JoinAck struct {
	Type  string `json:"type"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// StrokeMessage carries one stroke, unscaled, in the signer's declared
// source coordinate space. Receivers scale into the slot rectangle.
type StrokeMessage struct {
	Type         string       `json:"type"`
	Side         string       `json:"side"`
	Index        int          `json:"index"`
	Points       [][2]float64 `json:"points"`
	Size         float64      `json:"size"`
	Color        string       `json:"color"`
	SourceWidth  float64      `json:"sourceWidth"`
	SourceHeight float64      `json:"sourceHeight"`
}

// ClearMessage wipes one slot's signature on every view.
type ClearMessage struct {
	Type  string `json:"type"`
	Side  string `json:"side"`
	Index int    `json:"index"`
}

// SlotsUpdateMessage carries the full new slot arrays for both sides.
type SlotsUpdateMessage struct {
	Type   string          `json:"type"`
	SlotsA []geometry.Rect `json:"slotsA"`
	SlotsB []geometry.Rect `json:"slotsB"`
}

// RoomDeletedMessage tells every subscriber to stop interacting.
type RoomDeletedMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// Stroke is one continuous pointer drag in the signer's original
// coordinate space. Immutable once appended.
type Stroke struct {
	Points [][2]float64 `json:"points"`
	Size   float64      `json:"size"`
	Color  string       `json:"color"`
}

// SignatureRecord accumulates a slot's strokes plus the coordinate
// space they were captured in. Append-only; cleared wholesale.
type SignatureRecord struct {
	OriginalWidth  float64  `json:"originalWidth"`
	OriginalHeight float64  `json:"originalHeight"`
	Strokes        []Stroke `json:"strokes"`
}

// SlotView is one slot as seen by a snapshot: geometry plus any
// accumulated signature.
type SlotView struct {
	geometry.Rect
	SignatureData *SignatureRecord `json:"signatureData,omitempty"`
}

// Snapshot is the full current room state a (re)joining participant
// renders once before streaming.
type Snapshot struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	StageWidth  int        `json:"stageWidth"`
	StageHeight int        `json:"stageHeight"`
	SlotsA      []SlotView `json:"slotsA"`
	SlotsB      []SlotView `json:"slotsB"`
}
