package handler

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"signroom-backend/internal/auth"
	"signroom-backend/internal/config"
	"signroom-backend/internal/geometry"
	"signroom-backend/internal/hub"
	"signroom-backend/internal/store"
)

// RoomHandler 룸 CRUD 및 슬롯 변경 핸들러. Geometry mutations go
// through here: authorize, persist, then publish on the room channel.
type RoomHandler struct {
	db      *gorm.DB
	store   *store.RoomStore
	roomHub *hub.RoomHub
	cfg     *config.RoomConfig

	// authorize decides who may mutate a room. Tests substitute it.
	authorize func(db *gorm.DB, userID int64, roomID string) (bool, error)
}

// NewRoomHandler RoomHandler 생성
func NewRoomHandler(db *gorm.DB, roomStore *store.RoomStore, roomHub *hub.RoomHub, cfg *config.RoomConfig) *RoomHandler {
	return &RoomHandler{
		db:        db,
		store:     roomStore,
		roomHub:   roomHub,
		cfg:       cfg,
		authorize: auth.IsOwnerOrAdmin,
	}
}

type createRoomRequest struct {
	Title       string `json:"title"`
	StageWidth  int    `json:"stageWidth"`
	StageHeight int    `json:"stageHeight"`
}

// CreateRoom 룸 생성 — 4자리 코드 발급, 기본 레이아웃은 양측 1석.
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Title == "" {
		req.Title = "Signing ceremony"
	}
	if req.StageWidth <= 0 {
		req.StageWidth = h.cfg.DefaultStageWidth
	}
	if req.StageHeight <= 0 {
		req.StageHeight = h.cfg.DefaultStageHeight
	}

	slotsA, slotsB := geometry.AutoLayout(1, 1, req.StageWidth, req.StageHeight)

	roomID, err := h.store.CreateRoom(req.Title, userID, req.StageWidth, req.StageHeight, slotsA, slotsB)
	if err != nil {
		log.Printf("[Room] Create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create room"})
	}

	return c.JSON(fiber.Map{
		"roomId":        roomID,
		"adminUrl":      fmt.Sprintf("/admin.html?roomId=%s", roomID),
		"signerBaseUrl": fmt.Sprintf("/signer.html?roomId=%s", roomID),
	})
}

// ListRooms 내 룸 목록
func (h *RoomHandler) ListRooms(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	states, err := h.store.ListRoomsByOwner(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list rooms"})
	}

	items := make([]fiber.Map, 0, len(states))
	for _, s := range states {
		items = append(items, fiber.Map{
			"id":            s.ID,
			"title":         s.Title,
			"stage":         fiber.Map{"width": s.StageWidth, "height": s.StageHeight},
			"slotsA":        s.SlotsA,
			"slotsB":        s.SlotsB,
			"adminUrl":      fmt.Sprintf("/admin.html?roomId=%s", s.ID),
			"signerBaseUrl": fmt.Sprintf("/signer.html?roomId=%s", s.ID),
		})
	}

	return c.JSON(fiber.Map{"success": true, "items": items})
}

// GetRoom 스냅샷 조회 — (재)접속한 참가자는 이 응답을 한 번 렌더링한
// 뒤 채널 메시지만 반영한다. Public read, like the reference server.
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	roomID := c.Params("roomId")

	room, err := h.roomHub.GetRoom(roomID)
	if err != nil {
		if errors.Is(err, hub.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room"})
	}

	return c.JSON(room.Snapshot())
}

type updateSlotsRequest struct {
	SlotsA []geometry.Rect `json:"slotsA"`
	SlotsB []geometry.Rect `json:"slotsB"`
}

// UpdateSlots 슬롯 배열 전체 교체. Whole-array replacement per side is
// the only mutation; last writer wins and every write is re-broadcast.
func (h *RoomHandler) UpdateSlots(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int64)
	roomID := c.Params("roomId")

	var req updateSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SlotsA == nil || req.SlotsB == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "slotsA and slotsB required"})
	}

	return h.applySlots(c, userID, roomID, req.SlotsA, req.SlotsB)
}

type autoLayoutRequest struct {
	CountA int `json:"countA"`
	CountB int `json:"countB"`
}

// AutoLayout 서버측 자동 배치 — 동일한 공식이 프리뷰와 기본 배치에
// 쓰인다.
func (h *RoomHandler) AutoLayout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int64)
	roomID := c.Params("roomId")

	var req autoLayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.CountA < 0 || req.CountB < 0 || req.CountA+req.CountB == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one slot required"})
	}

	state, err := h.store.LoadRoom(roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load room"})
	}

	slotsA, slotsB := geometry.AutoLayout(req.CountA, req.CountB, state.StageWidth, state.StageHeight)
	return h.applySlots(c, userID, roomID, slotsA, slotsB)
}

// applySlots authorizes, persists, then publishes. A failed persist
// leaves the live room untouched so broadcasts never drift from the
// durable state.
func (h *RoomHandler) applySlots(c *fiber.Ctx, userID int64, roomID string, slotsA, slotsB []geometry.Rect) error {
	allowed, err := h.authorize(h.db, userID, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check permission"})
	}
	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.store.SaveSlots(roomID, slotsA, slotsB); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		log.Printf("[Room %s] SaveSlots failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save slots"})
	}

	if room, ok := h.roomHub.Peek(roomID); ok {
		room.UpdateSlots(slotsA, slotsB)
	}

	return c.JSON(fiber.Map{"success": true, "slotsA": slotsA, "slotsB": slotsB})
}

// DeleteRoom 룸 삭제 — 슬롯 행과 룸 레코드를 지우고, room-deleted를
// 발행한 뒤 레지스트리에서 제거한다.
func (h *RoomHandler) DeleteRoom(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int64)
	roomID := c.Params("roomId")

	allowed, err := h.authorize(h.db, userID, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check permission"})
	}
	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	if err := h.store.DeleteRoom(roomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		log.Printf("[Room %s] Delete failed: %v", roomID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete room"})
	}

	h.roomHub.RoomDeleted(roomID)

	return c.JSON(fiber.Map{"success": true})
}
