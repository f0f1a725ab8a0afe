package recovery

import (
	"time"
)

// Token is a single-use capability minted by a successful recovery
// verification. The later password-reset call must present it; redeeming
// flips Consumed once, same one-way rule as an OTP row.
type Token struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Token       string    `gorm:"type:varchar(36);not null;unique" json:"token"`
	AccountUuid string    `gorm:"type:varchar(36);not null;index" json:"account_uuid"`
	Consumed    bool      `gorm:"default:false" json:"consumed"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsExpired reports whether the token's validity window has passed.
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
