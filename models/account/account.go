package account

import (
	"time"

	"storefront-auth/constants"
)

// Account is a storefront customer or admin identity. An account is keyed
// by email OR phone; whichever identified it at signup is set, the other
// stays nil. Both are stored normalized (lower-cased email, E.164 phone).
type Account struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid         string  `gorm:"type:varchar(36);not null;unique" json:"uuid"`
	Email        *string `gorm:"type:varchar(255);unique" json:"email,omitempty"`
	Phone        *string `gorm:"type:varchar(20);unique" json:"phone,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:user" json:"role"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the account carries the privileged role.
func (a *Account) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// View is the client-facing projection of an account.
type View struct {
	Uuid  string  `json:"uuid"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Role  string  `json:"role"`
}

// ToView strips persistence-only fields for API responses.
func (a *Account) ToView() View {
	return View{
		Uuid:  a.Uuid,
		Email: a.Email,
		Phone: a.Phone,
		Role:  a.Role,
	}
}
