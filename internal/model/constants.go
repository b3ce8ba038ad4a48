package model

// UserRole 계정 역할
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN" // superuser, may mutate any room
)

func (r UserRole) String() string {
	return string(r)
}
