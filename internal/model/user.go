package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account in the identity store. PasswordHash never leaves the server.
type User struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Email            string              `bson:"email" json:"email"`
	PasswordHash     string              `bson:"password" json:"-"`
	FullName         string              `bson:"full_name" json:"full_name"`
	Designation      string              `bson:"designation,omitempty" json:"designation,omitempty"`
	DepartmentID     *primitive.ObjectID `bson:"department_id,omitempty" json:"department_id,omitempty"`
	Contact          string              `bson:"contact,omitempty" json:"contact,omitempty"`
	WorkingHours     string              `bson:"working_hours,omitempty" json:"working_hours,omitempty"`
	EmployeeID       string              `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
	AvatarURL        string              `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Responsibilities string              `bson:"responsibilities,omitempty" json:"responsibilities,omitempty"`
	External         bool                `bson:"external,omitempty" json:"external,omitempty"`
	LastLogin        *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) GetID() primitive.ObjectID   { return u.ID }
func (u *User) SetID(id primitive.ObjectID) { u.ID = id }

// DefaultWorkingHours is assigned to new accounts
const DefaultWorkingHours = "9:00 AM - 5:00 PM"

// UserSummary is the populated form of a user reference
type UserSummary struct {
	ID       primitive.ObjectID `json:"_id"`
	Email    string             `json:"email"`
	FullName string             `json:"full_name"`
}

// Summary returns the public reference fields of the user
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// SignupRequest registers a password account
type SignupRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	FullName     string `json:"full_name"`
	DepartmentID string `json:"department_id"`
}

// LoginRequest authenticates a password account
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued bearer token
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// ProfileUpdate holds the mutable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName         *string `json:"full_name"`
	Designation      *string `json:"designation"`
	DepartmentID     *string `json:"department_id"`
	Contact          *string `json:"contact"`
	WorkingHours     *string `json:"working_hours"`
	EmployeeID       *string `json:"employee_id"`
	AvatarURL        *string `json:"avatar_url"`
	Responsibilities *string `json:"responsibilities"`
	Password         *string `json:"password"`
}
