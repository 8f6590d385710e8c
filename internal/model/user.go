package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles within a tenant
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a credential holder belonging to exactly one tenant.
// Email is unique per tenant, not globally: the same address may exist
// independently under two different tenants.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"uniqueIndex:idx_users_tenant_email;not null"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_users_tenant_email;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Role      string         `json:"role" gorm:"type:varchar(50);not null;default:'user'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}
