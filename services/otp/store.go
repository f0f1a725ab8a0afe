package otp

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	otpModel "storefront-auth/models/otp"
)

// ConsumeStatus is the outcome of an atomic consumption attempt.
type ConsumeStatus int

const (
	// ConsumeOK means exactly one pending row was flipped to consumed.
	ConsumeOK ConsumeStatus = iota
	// ConsumeNoMatch means no row matched: wrong code, already consumed,
	// or past expiry. The caller cannot tell which, on purpose.
	ConsumeNoMatch
)

// Store persists OTP rows. Consume is the only mutation and must be
// atomic: the pending check and the consumed flip happen as one
// conditional update, never a read followed by a write. The complete
// callback, when non-nil, runs in the same transaction as the flip so a
// consumed-code-without-completion state cannot persist; the *gorm.DB it
// receives is nil for stores without transactions.
type Store interface {
	Create(rec *otpModel.OTP) error
	InvalidatePending(target string, flow otpModel.FlowType) error
	Consume(target, code string, flow otpModel.FlowType, now time.Time, complete func(tx *gorm.DB) error) (ConsumeStatus, error)
	LatestPending(target string, flow otpModel.FlowType, now time.Time) (*otpModel.OTP, error)
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the Postgres-backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(rec *otpModel.OTP) error {
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create OTP record: %w", err)
	}
	return nil
}

// InvalidatePending marks every still-pending code for the target and
// flow as consumed. Issuance calls this before creating the replacement
// row, so at most one code per (target, flow) is live at a time.
func (s *gormStore) InvalidatePending(target string, flow otpModel.FlowType) error {
	err := s.db.Model(&otpModel.OTP{}).
		Where("target = ? AND flow_type = ? AND consumed = false", target, flow).
		Update("consumed", true).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate pending OTPs: %w", err)
	}
	return nil
}

func (s *gormStore) Consume(target, code string, flow otpModel.FlowType, now time.Time, complete func(tx *gorm.DB) error) (ConsumeStatus, error) {
	status := ConsumeNoMatch

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&otpModel.OTP{}).
			Where("target = ? AND code = ? AND flow_type = ? AND consumed = false AND expires_at > ?",
				target, code, flow, now).
			Update("consumed", true)
		if res.Error != nil {
			return fmt.Errorf("failed to consume OTP: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		status = ConsumeOK
		if complete != nil {
			// An error here rolls back the flip along with whatever
			// complete wrote.
			return complete(tx)
		}
		return nil
	})
	if err != nil {
		return ConsumeNoMatch, err
	}

	return status, nil
}

func (s *gormStore) LatestPending(target string, flow otpModel.FlowType, now time.Time) (*otpModel.OTP, error) {
	var rec otpModel.OTP

	err := s.db.Where("target = ? AND flow_type = ? AND consumed = false AND expires_at > ?",
		target, flow, now).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find OTP record: %w", err)
	}

	return &rec, nil
}

func (s *gormStore) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	res := s.db.Where("expires_at < ?", cutoff).Delete(&otpModel.OTP{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge expired OTPs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
