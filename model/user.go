package model

import "time"

type User struct {
	ID            int64     `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	IsTaskCreator bool      `json:"is_task_creator"`
	IsTaskEarner  bool      `json:"is_task_earner"`
	CreatedAt     time.Time `json:"created_at"`
}

// Role is the settlement-facing view of the user flags. A user must be
// exactly one of creator or earner for any balance to move.
type Role string

const (
	RoleCreator Role = "creator"
	RoleEarner  Role = "earner"
)

// RoleOf resolves the boolean flags into a Role once, at settlement entry.
// ok is false when the user is neither or both.
func RoleOf(u *User) (Role, bool) {
	switch {
	case u.IsTaskCreator && !u.IsTaskEarner:
		return RoleCreator, true
	case u.IsTaskEarner && !u.IsTaskCreator:
		return RoleEarner, true
	default:
		return "", false
	}
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	IsTaskCreator bool   `json:"is_task_creator"`
	IsTaskEarner  bool   `json:"is_task_earner"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
