package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a staff member of the field operations team
type User struct {
	BaseModel
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Name        string     `gorm:"not null" json:"name"`
	Phone       string     `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Role        Role       `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	InvitedBy   *uuid.UUID `gorm:"type:uuid" json:"invitedBy,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "staff_users"
}

// UserResponse is the response DTO for a staff user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// CreateUserRequest is the request DTO for registering a staff user
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Role  Role   `json:"role" binding:"required"`
}

// UpdateUserRoleRequest is the request DTO for updating a user's role
type UpdateUserRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}
