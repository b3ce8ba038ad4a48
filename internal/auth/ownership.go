package auth

import (
	"errors"

	"gorm.io/gorm"

	"signroom-backend/internal/model"
)

// IsOwnerOrAdmin 권한 확인 — room owners and ADMIN accounts may mutate
// slot geometry or delete the room; everyone else may not. A missing
// room surfaces as gorm.ErrRecordNotFound so callers answer NotFound
// rather than Forbidden.
func IsOwnerOrAdmin(db *gorm.DB, userID int64, roomID string) (bool, error) {
	// 1. 소유자(Owner) 확인
	var room model.Room
	if err := db.Select("owner_id").Take(&room, "id = ?", roomID).Error; err != nil {
		return false, err
	}
	if room.OwnerID == userID {
		return true, nil
	}

	// 2. ADMIN 계정 확인 (Super User)
	var user model.User
	if err := db.Select("role").Take(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return user.Role == model.UserRoleAdmin.String(), nil
}
