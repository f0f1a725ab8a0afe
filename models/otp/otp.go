package otp

import (
	"time"
)

// FlowType is the purpose an OTP was issued for. It decides the existence
// policy at issuance and the completion action at verification.
type FlowType string

const (
	FlowLogin    FlowType = "login"
	FlowSignup   FlowType = "signup"
	FlowRecovery FlowType = "recovery"
)

// ParseFlowType maps the wire value onto the closed enum.
func ParseFlowType(s string) (FlowType, bool) {
	switch FlowType(s) {
	case FlowLogin, FlowSignup, FlowRecovery:
		return FlowType(s), true
	}
	return "", false
}

// Channel is the delivery channel an OTP goes out on.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// OTP is a single one-time passcode row. Rows are append-only except for
// the consumed flag, which transitions false->true exactly once.
type OTP struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Target    string    `gorm:"type:varchar(255);not null;index:idx_otp_target_flow" json:"target"`
	Channel   Channel   `gorm:"type:varchar(10);not null" json:"channel"`
	Code      string    `gorm:"type:varchar(12);not null" json:"code"`
	FlowType  FlowType  `gorm:"type:varchar(20);not null;index:idx_otp_target_flow" json:"flow_type"`
	Consumed  bool      `gorm:"default:false" json:"consumed"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsExpired reports whether the code's validity window has passed.
func (o *OTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsPending reports whether the code is still usable.
func (o *OTP) IsPending() bool {
	return !o.Consumed && !o.IsExpired()
}
