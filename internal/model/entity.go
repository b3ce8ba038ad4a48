package model

import (
	"time"
)

// User account that can own signing rooms.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:varchar(20);default:'USER'" json:"role"` // USER, ADMIN

	// Password reset
	ResetCode      *string    `gorm:"type:varchar(10)" json:"-"`
	ResetExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Rooms []Room `gorm:"foreignKey:OwnerID" json:"rooms,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Room is one signing session. The primary key is the short public
// room code (4-digit numeric string).
type Room struct {
	ID          string    `gorm:"type:varchar(8);primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	OwnerID     int64     `gorm:"not null;index" json:"owner_id"`
	StageWidth  int       `gorm:"not null;default:1000" json:"stage_width"`
	StageHeight int       `gorm:"not null;default:1000" json:"stage_height"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Owner User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Slots []Slot `gorm:"foreignKey:RoomID" json:"slots,omitempty"`
}

func (Room) TableName() string {
	return "rooms"
}

// Slot is one signing rectangle. (room, side, idx) is the sole
// addressing key for stroke routing; there is no slot identity beyond
// this triple.
type Slot struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID string `gorm:"type:varchar(8);not null;uniqueIndex:idx_room_side_idx" json:"room_id"`
	Side   string `gorm:"type:varchar(1);not null;uniqueIndex:idx_room_side_idx" json:"side"`
	Idx    int    `gorm:"not null;uniqueIndex:idx_room_side_idx" json:"idx"`
	X      int    `gorm:"not null" json:"x"`
	Y      int    `gorm:"not null" json:"y"`
	W      int    `gorm:"not null" json:"w"`
	H      int    `gorm:"not null" json:"h"`

	// Relations
	Room Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (Slot) TableName() string {
	return "slots"
}
