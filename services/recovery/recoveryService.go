package recovery

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	recoveryModel "storefront-auth/models/recovery"
	otpService "storefront-auth/services/otp"
)

// ErrInvalidToken is returned when a reset token is unknown, expired, or
// already redeemed.
var ErrInvalidToken = errors.New("invalid or expired reset token")

// CodeInvalidResetToken is the stable wire code for ErrInvalidToken.
const CodeInvalidResetToken = "INVALID_RESET_TOKEN"

// Service mints and redeems the single-use capability tokens that bind a
// recovery verification to the later password change. It implements
// otpService.RecoveryIssuer.
type Service struct {
	db       *gorm.DB
	lifetime time.Duration
}

func NewService(db *gorm.DB, lifetime time.Duration) *Service {
	if lifetime <= 0 {
		lifetime = 15 * time.Minute
	}
	return &Service{db: db, lifetime: lifetime}
}

// WithTx returns a view of the service bound to the given transaction.
func (s *Service) WithTx(tx *gorm.DB) otpService.RecoveryIssuer {
	if tx == nil {
		return s
	}
	return &Service{db: tx, lifetime: s.lifetime}
}

// Issue mints a fresh token for the account. Any token the account still
// holds is invalidated first, so exactly one reset capability is live.
func (s *Service) Issue(accountUuid string) (*recoveryModel.Token, error) {
	err := s.db.Model(&recoveryModel.Token{}).
		Where("account_uuid = ? AND consumed = false", accountUuid).
		Update("consumed", true).Error
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate prior reset tokens: %w", err)
	}

	token := &recoveryModel.Token{
		Token:       uuid.NewString(),
		AccountUuid: accountUuid,
		Consumed:    false,
		ExpiresAt:   time.Now().Add(s.lifetime),
	}
	if err := s.db.Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return token, nil
}

// Redeem consumes the token and returns the account it was minted for.
// Same one-way rule as OTP consumption: a single conditional update,
// checked by rows affected, so two racing resets cannot both pass.
func (s *Service) Redeem(token string) (string, error) {
	var accountUuid string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rec recoveryModel.Token
		err := tx.Where("token = ?", token).First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("failed to look up reset token: %w", err)
		}

		res := tx.Model(&recoveryModel.Token{}).
			Where("token = ? AND consumed = false AND expires_at > ?", token, time.Now()).
			Update("consumed", true)
		if res.Error != nil {
			return fmt.Errorf("failed to redeem reset token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidToken
		}

		accountUuid = rec.AccountUuid
		return nil
	})
	if err != nil {
		return "", err
	}

	return accountUuid, nil
}
