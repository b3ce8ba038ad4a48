package store

import (
	"reflect"
	"testing"

	"signroom-backend/internal/geometry"
	"signroom-backend/internal/model"
)

func TestBuildRoomStatesGroupsByRoom(t *testing.T) {
	rooms := []model.Room{
		{ID: "1111", Title: "first", OwnerID: 1, StageWidth: 1000, StageHeight: 800},
		{ID: "2222", Title: "second", OwnerID: 1, StageWidth: 640, StageHeight: 480},
	}
	slots := []model.Slot{
		{RoomID: "1111", Side: "A", Idx: 0, X: 20, Y: 100, W: 300, H: 150},
		{RoomID: "1111", Side: "A", Idx: 1, X: 336, Y: 100, W: 300, H: 150},
		{RoomID: "1111", Side: "B", Idx: 0, X: 20, Y: 270, W: 300, H: 150},
		{RoomID: "2222", Side: "B", Idx: 0, X: 20, Y: 200, W: 200, H: 120},
	}

	states := buildRoomStates(rooms, slots)
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	// Room order from the query is preserved.
	if states[0].ID != "1111" || states[1].ID != "2222" {
		t.Fatalf("room order not preserved: %s, %s", states[0].ID, states[1].ID)
	}

	if len(states[0].SlotsA) != 2 || len(states[0].SlotsB) != 1 {
		t.Errorf("room 1111 slots = %d/%d, want 2/1", len(states[0].SlotsA), len(states[0].SlotsB))
	}
	want := geometry.Rect{X: 336, Y: 100, W: 300, H: 150}
	if !reflect.DeepEqual(states[0].SlotsA[1], want) {
		t.Errorf("A-2 rect = %+v, want %+v", states[0].SlotsA[1], want)
	}

	// A room with no side-A slots still gets a non-nil empty array.
	if states[1].SlotsA == nil || len(states[1].SlotsA) != 0 {
		t.Errorf("room 2222 side A = %v, want empty", states[1].SlotsA)
	}
	if len(states[1].SlotsB) != 1 {
		t.Errorf("room 2222 side B = %v, want 1 slot", states[1].SlotsB)
	}
}

func TestBuildRoomStatesSkipsOrphanSlots(t *testing.T) {
	rooms := []model.Room{
		{ID: "1111", Title: "first", OwnerID: 1, StageWidth: 1000, StageHeight: 800},
	}
	slots := []model.Slot{
		{RoomID: "9999", Side: "A", Idx: 0, X: 20, Y: 100, W: 300, H: 150},
	}

	states := buildRoomStates(rooms, slots)
	if len(states[0].SlotsA) != 0 || len(states[0].SlotsB) != 0 {
		t.Errorf("orphan slot row attached to the wrong room: %+v", states[0])
	}
}
