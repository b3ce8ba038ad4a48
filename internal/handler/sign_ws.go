package handler

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"signroom-backend/internal/geometry"
	"signroom-backend/internal/hub"
)

// SignWSHandler WebSocket 서명 채널 핸들러. One connection joins exactly
// one room; the join must be the first message and is acknowledged
// synchronously before anything else is meaningful.
type SignWSHandler struct {
	roomHub *hub.RoomHub
}

// NewSignWSHandler SignWSHandler 생성
func NewSignWSHandler(roomHub *hub.RoomHub) *SignWSHandler {
	return &SignWSHandler{roomHub: roomHub}
}

// HandleWebSocket WebSocket 연결 처리
func (h *SignWSHandler) HandleWebSocket(c *websocket.Conn) {
	defer c.Close()

	// 첫 메시지는 반드시 join
	_, raw, err := c.ReadMessage()
	if err != nil {
		return
	}

	var req hub.JoinRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Type != hub.MsgJoin {
		writeAck(c, false, "expected join message")
		return
	}
	if req.RoomID == "" {
		writeAck(c, false, "roomId required")
		return
	}

	side := geometry.Side(req.Side)
	switch req.Role {
	case hub.RoleAdmin:
		// Bound to the room as a whole.
	case hub.RoleSigner:
		if !side.Valid() || req.Index < 0 {
			writeAck(c, false, "signer requires a valid side and index")
			return
		}
	default:
		writeAck(c, false, "unknown role")
		return
	}

	room, err := h.roomHub.GetRoom(req.RoomID)
	if err != nil {
		writeAck(c, false, "room not found")
		return
	}

	// Ack before registering: the participant has no concurrent writer
	// until it joins the channel.
	writeAck(c, true, "")

	p := hub.NewParticipant(uuid.NewString(), req.Role, side, req.Index, c)
	room.Join(p)
	defer room.Leave(p.ID)

	// 메시지 수신 루프
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			// A disconnect mid-stroke just stops contributing points;
			// the partial stroke stands.
			return
		}

		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}

		switch envelope.Type {
		case hub.MsgStroke:
			var msg hub.StrokeMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			room.RelayStroke(p, &msg)

		case hub.MsgClear:
			var msg hub.ClearMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			room.RelayClear(p, &msg)

		default:
			// Unknown kinds are ignored; one bad message never costs
			// the connection.
		}
	}
}

func writeAck(c *websocket.Conn, ok bool, errMsg string) {
	data, err := json.Marshal(&hub.JoinAck{Type: hub.MsgJoined, OK: ok, Error: errMsg})
	if err != nil {
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[SignWS] Failed to send ack: %v", err)
	}
}
