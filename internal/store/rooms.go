package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"signroom-backend/internal/geometry"
	"signroom-backend/internal/model"
)

var (
	// ErrRoomNotFound 룸 없음
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomIDExhausted 4자리 룸 코드 고갈
	ErrRoomIDExhausted = errors.New("could not allocate a unique room id")
)

const roomIDAttempts = 100

// RoomState is the persisted shape of a room: metadata plus the two
// slot arrays in side order.
type RoomState struct {
	ID          string
	Title       string
	OwnerID     int64
	StageWidth  int
	StageHeight int
	SlotsA      []geometry.Rect
	SlotsB      []geometry.Rect
}

// RoomStore persists rooms and slot geometry through GORM.
type RoomStore struct {
	db *gorm.DB
}

// NewRoomStore RoomStore 생성
func NewRoomStore(db *gorm.DB) *RoomStore {
	return &RoomStore{db: db}
}

// CreateRoom inserts a new room under a fresh 4-digit code, retrying
// on collision, and persists the initial slot layout.
func (s *RoomStore) CreateRoom(title string, ownerID int64, stageW, stageH int, slotsA, slotsB []geometry.Rect) (string, error) {
	for attempt := 0; attempt < roomIDAttempts; attempt++ {
		id, err := randomRoomID()
		if err != nil {
			return "", err
		}

		var count int64
		if err := s.db.Model(&model.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check room id: %w", err)
		}
		if count > 0 {
			continue
		}

		room := model.Room{
			ID:          id,
			Title:       title,
			OwnerID:     ownerID,
			StageWidth:  stageW,
			StageHeight: stageH,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&room).Error; err != nil {
				return err
			}
			return createSlots(tx, id, slotsA, slotsB)
		})
		if err != nil {
			return "", fmt.Errorf("failed to create room: %w", err)
		}
		return id, nil
	}
	return "", ErrRoomIDExhausted
}

// LoadRoom reads a room and its slot arrays.
func (s *RoomStore) LoadRoom(id string) (*RoomState, error) {
	var room model.Room
	if err := s.db.Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	var slots []model.Slot
	if err := s.db.Where("room_id = ?", id).Order("side ASC, idx ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}

	return buildRoomStates([]model.Room{room}, slots)[0], nil
}

// ListRoomsByOwner returns all rooms owned by a user, newest first.
func (s *RoomStore) ListRoomsByOwner(ownerID int64) ([]*RoomState, error) {
	var rooms []model.Room
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []*RoomState{}, nil
	}

	ids := make([]string, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}

	// One slot query for the whole list instead of one per room.
	var slots []model.Slot
	if err := s.db.Where("room_id IN ?", ids).Order("side ASC, idx ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}

	return buildRoomStates(rooms, slots), nil
}

// buildRoomStates groups slot rows under their rooms, preserving the
// room order and the side/idx order of the rows.
func buildRoomStates(rooms []model.Room, slots []model.Slot) []*RoomState {
	states := make([]*RoomState, len(rooms))
	byID := make(map[string]*RoomState, len(rooms))
	for i, room := range rooms {
		states[i] = &RoomState{
			ID:          room.ID,
			Title:       room.Title,
			OwnerID:     room.OwnerID,
			StageWidth:  room.StageWidth,
			StageHeight: room.StageHeight,
			SlotsA:      []geometry.Rect{},
			SlotsB:      []geometry.Rect{},
		}
		byID[room.ID] = states[i]
	}

	for _, slot := range slots {
		state, ok := byID[slot.RoomID]
		if !ok {
			continue
		}
		rect := geometry.Rect{X: slot.X, Y: slot.Y, W: slot.W, H: slot.H}
		if slot.Side == string(geometry.SideA) {
			state.SlotsA = append(state.SlotsA, rect)
		} else {
			state.SlotsB = append(state.SlotsB, rect)
		}
	}
	return states
}

// SaveSlots replaces both slot arrays for a room wholesale. There is
// no partial slot update; last writer wins.
func (s *RoomStore) SaveSlots(id string, slotsA, slotsB []geometry.Rect) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check room: %w", err)
		}
		if count == 0 {
			return ErrRoomNotFound
		}

		if err := tx.Where("room_id = ?", id).Delete(&model.Slot{}).Error; err != nil {
			return fmt.Errorf("failed to delete slots: %w", err)
		}
		return createSlots(tx, id, slotsA, slotsB)
	})
}

// DeleteRoom removes a room and all its slot rows.
func (s *RoomStore) DeleteRoom(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&model.Slot{}).Error; err != nil {
			return fmt.Errorf("failed to delete slots: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&model.Room{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete room: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
}

func createSlots(tx *gorm.DB, roomID string, slotsA, slotsB []geometry.Rect) error {
	rows := make([]model.Slot, 0, len(slotsA)+len(slotsB))
	for i, r := range slotsA {
		rows = append(rows, model.Slot{RoomID: roomID, Side: string(geometry.SideA), Idx: i, X: r.X, Y: r.Y, W: r.W, H: r.H})
	}
	for i, r := range slotsB {
		rows = append(rows, model.Slot{RoomID: roomID, Side: string(geometry.SideB), Idx: i, X: r.X, Y: r.Y, W: r.W, H: r.H})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert slots: %w", err)
	}
	return nil
}

// randomRoomID draws a 4-digit numeric code (1000~9999).
func randomRoomID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate room id: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
