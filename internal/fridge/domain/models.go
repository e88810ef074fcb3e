package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is a member's role on a shared fridge.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleMember Role = "Member"
)

// Fridge is a shared inventory location.
type Fridge struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Fridge) TableName() string { return "fridges" }

// FridgeAccess grants a user a role on a fridge.
type FridgeAccess struct {
	FridgeID  snowflake.ID `gorm:"primaryKey" json:"fridge_id"`
	UserID    snowflake.ID `gorm:"primaryKey" json:"user_id"`
	Role      Role         `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (FridgeAccess) TableName() string { return "fridge_access" }
