package model

import (
	"time"

	"gorm.io/gorm"
)

// Branding holds the per-tenant presentation attributes returned to clients.
// Kept as dedicated columns rather than a settings blob so config updates can
// be validated field by field.
type Branding struct {
	LogoGlyph      string `json:"logo_glyph" gorm:"type:varchar(16)"`
	PrimaryColor   string `json:"primary_color" gorm:"type:varchar(32)"`
	SecondaryColor string `json:"secondary_color" gorm:"type:varchar(32)"`
	AccentColor    string `json:"accent_color" gorm:"type:varchar(32)"`
	FontFamily     string `json:"font_family" gorm:"type:varchar(100)"`
}

// Tenant represents one isolated organization. The Slug is the stable string
// key carried in the X-Tenant-ID header, the /t/<slug>/ path prefix, the host
// subdomain and the JWT tenant claim.
type Tenant struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Slug      string         `json:"slug" gorm:"type:varchar(63);uniqueIndex;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Branding  Branding       `json:"branding" gorm:"embedded;embeddedPrefix:branding_"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
