package handler

import (
	"bytes"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"signroom-backend/internal/config"
	"signroom-backend/internal/geometry"
	"signroom-backend/internal/hub"
	"signroom-backend/internal/store"
)

type fakeLoader struct {
	rooms map[string]*store.RoomState
}

func (l *fakeLoader) LoadRoom(id string) (*store.RoomState, error) {
	state, ok := l.rooms[id]
	if !ok {
		return nil, store.ErrRoomNotFound
	}
	return state, nil
}

func newRoomTestApp(authorize func(db *gorm.DB, userID int64, roomID string) (bool, error)) (*fiber.App, *hub.RoomHub) {
	slotsA, slotsB := geometry.AutoLayout(1, 1, 1000, 1000)
	loader := &fakeLoader{rooms: map[string]*store.RoomState{
		"1234": {
			ID: "1234", Title: "signing", OwnerID: 1,
			StageWidth: 1000, StageHeight: 1000,
			SlotsA: slotsA, SlotsB: slotsB,
		},
	}}
	roomHub := hub.NewRoomHub(loader, nil)

	h := NewRoomHandler(nil, nil, roomHub, &config.RoomConfig{
		DefaultStageWidth:  1000,
		DefaultStageHeight: 1000,
	})
	h.authorize = authorize

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", int64(7))
		return c.Next()
	})
	app.Put("/api/rooms/:roomId/slots", h.UpdateSlots)
	app.Delete("/api/rooms/:roomId", h.DeleteRoom)
	return app, roomHub
}

func denyAll(*gorm.DB, int64, string) (bool, error) {
	return false, nil
}

func TestUpdateSlotsForbiddenLeavesRoomUntouched(t *testing.T) {
	app, roomHub := newRoomTestApp(denyAll)

	room, err := roomHub.GetRoom("1234")
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	wantA, wantB := room.Slots()

	body := []byte(`{"slotsA":[{"x":1,"y":1,"w":50,"h":50}],"slotsB":[]}`)
	req := httptest.NewRequest("PUT", "/api/rooms/1234/slots", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	gotA, gotB := room.Slots()
	if !reflect.DeepEqual(gotA, wantA) || !reflect.DeepEqual(gotB, wantB) {
		t.Errorf("forbidden request mutated slots: got %v/%v, want %v/%v", gotA, gotB, wantA, wantB)
	}
}

func TestDeleteRoomForbiddenKeepsRoomAlive(t *testing.T) {
	app, roomHub := newRoomTestApp(denyAll)

	if _, err := roomHub.GetRoom("1234"); err != nil {
		t.Fatalf("GetRoom: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/api/rooms/1234", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	if _, ok := roomHub.Peek("1234"); !ok {
		t.Error("forbidden delete evicted the room")
	}
}

func TestRoomMutationMissingRoomIsNotFound(t *testing.T) {
	app, _ := newRoomTestApp(func(*gorm.DB, int64, string) (bool, error) {
		return false, gorm.ErrRecordNotFound
	})

	body := []byte(`{"slotsA":[],"slotsB":[]}`)
	req := httptest.NewRequest("PUT", "/api/rooms/9999/slots", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("slots status = %d, want 404", resp.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/rooms/9999", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("delete status = %d, want 404", resp.StatusCode)
	}
}
