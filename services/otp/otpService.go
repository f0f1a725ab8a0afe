package otp

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront-auth/logger"
	accountModel "storefront-auth/models/account"
	otpModel "storefront-auth/models/otp"
	recoveryModel "storefront-auth/models/recovery"
)

// AccountStore is the account collaborator. Targets passed in are already
// normalized. WithTx returns a view of the store bound to the given
// transaction; implementations without transactions return themselves.
type AccountStore interface {
	Exists(target Target) (bool, error)
	FindByTarget(target Target) (*accountModel.Account, error)
	Create(target Target, password string) (*accountModel.Account, error)
	WithTx(tx *gorm.DB) AccountStore
}

// Messenger delivers a message out of band. It never returns an error;
// delivery failure is a boolean so issuance can succeed regardless.
type Messenger interface {
	Send(target string, channel otpModel.Channel, subject, body string) bool
}

// RecoveryIssuer mints the single-use capability token a recovery
// verification hands back to the client.
type RecoveryIssuer interface {
	Issue(accountUuid string) (*recoveryModel.Token, error)
	WithTx(tx *gorm.DB) RecoveryIssuer
}

// EstablisherFunc sets the session for a verified identity. The HTTP
// layer passes one bound to the calling request.
type EstablisherFunc func(accountUuid string, isAdmin bool) error

// Policy carries the issuance constants, fixed at construction.
type Policy struct {
	Lifetime   time.Duration
	CodeLength int
}

// Service orchestrates OTP issuance and verification.
type Service struct {
	store     Store
	accounts  AccountStore
	messenger Messenger
	recovery  RecoveryIssuer
	generator Generator
	policy    Policy
}

// NewService wires the OTP service with its collaborators.
func NewService(store Store, accounts AccountStore, messenger Messenger, recovery RecoveryIssuer, policy Policy) *Service {
	if policy.Lifetime <= 0 {
		policy.Lifetime = 10 * time.Minute
	}
	return &Service{
		store:     store,
		accounts:  accounts,
		messenger: messenger,
		recovery:  recovery,
		generator: NewGenerator(policy.CodeLength),
		policy:    policy,
	}
}

// IssueResult reports a stored code and whether delivery went through.
type IssueResult struct {
	Record    *otpModel.OTP
	Delivered bool
}

// Issue creates and dispatches a code for the given flow. The existence
// gate runs first: login and recovery require an account for the target,
// signup requires its absence. No row is written when the gate rejects.
// Delivery failure is a soft failure; the row is written either way.
func (s *Service) Issue(email, phone string, flow otpModel.FlowType) (*IssueResult, error) {
	target, err := NormalizeTarget(email, phone)
	if err != nil {
		return nil, err
	}

	exists, err := s.accounts.Exists(target)
	if err != nil {
		return nil, fmt.Errorf("failed to check account existence: %w", err)
	}

	switch flow {
	case otpModel.FlowLogin, otpModel.FlowRecovery:
		if !exists {
			return nil, ErrAccountNotFound
		}
	case otpModel.FlowSignup:
		if exists {
			return nil, ErrAccountExists
		}
	}

	code, err := s.generator.Generate()
	if err != nil {
		return nil, err
	}

	// A reissue supersedes anything still pending for this target+flow.
	if err := s.store.InvalidatePending(target.Value, flow); err != nil {
		return nil, err
	}

	rec := &otpModel.OTP{
		Target:    target.Value,
		Channel:   target.Channel,
		Code:      code,
		FlowType:  flow,
		Consumed:  false,
		ExpiresAt: time.Now().Add(s.policy.Lifetime),
	}
	if err := s.store.Create(rec); err != nil {
		return nil, err
	}

	delivered := s.messenger.Send(target.Value, target.Channel, subjectFor(flow), messageBody(code, s.policy.Lifetime))
	if !delivered {
		logger.Warning("OTP delivery failed for " + target.Value + ", code remains valid")
	}

	return &IssueResult{Record: rec, Delivered: delivered}, nil
}

// VerifyResult is the outcome of a successful verification.
type VerifyResult struct {
	Account        *accountModel.Account
	AccountCreated bool
	ResetToken     string
}

// Verify redeems a code. The pending check and the consumed flip are one
// atomic store operation; flow completion (account creation for signup)
// joins that transaction. The establisher runs for login and signup once
// everything else has committed.
func (s *Service) Verify(email, phone, code string, flow otpModel.FlowType, password string, establish EstablisherFunc) (*VerifyResult, error) {
	target, err := NormalizeTarget(email, phone)
	if err != nil {
		return nil, err
	}

	// Checked before consumption so a missing password does not burn the
	// code and force a reissue.
	if flow == otpModel.FlowSignup && password == "" {
		return nil, ErrPasswordRequired
	}

	result := &VerifyResult{}

	status, err := s.store.Consume(target.Value, code, flow, time.Now(), func(tx *gorm.DB) error {
		return s.complete(tx, target, flow, password, result)
	})
	if err != nil {
		return nil, err
	}
	if status != ConsumeOK {
		return nil, ErrInvalidOrExpiredCode
	}

	if establish != nil && (flow == otpModel.FlowLogin || flow == otpModel.FlowSignup) {
		if err := establish(result.Account.Uuid, result.Account.IsAdmin()); err != nil {
			return nil, fmt.Errorf("failed to establish session: %w", err)
		}
	}

	return result, nil
}

// complete runs the flow-specific completion inside the consumption
// transaction.
func (s *Service) complete(tx *gorm.DB, target Target, flow otpModel.FlowType, password string, result *VerifyResult) error {
	accounts := s.accounts
	if tx != nil {
		accounts = accounts.WithTx(tx)
	}

	switch flow {
	case otpModel.FlowSignup:
		// Re-check the gate: an account may have appeared between
		// issuance and verification.
		exists, err := accounts.Exists(target)
		if err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		if exists {
			return ErrAccountExists
		}

		acct, err := accounts.Create(target, password)
		if err != nil {
			return err
		}
		result.Account = acct
		result.AccountCreated = true

	case otpModel.FlowLogin:
		acct, err := accounts.FindByTarget(target)
		if err != nil {
			return err
		}
		if acct == nil {
			// Should not happen given the issuance gate, but the account
			// may have been deleted since.
			return ErrAccountNotFound
		}
		result.Account = acct

	case otpModel.FlowRecovery:
		acct, err := accounts.FindByTarget(target)
		if err != nil {
			return err
		}
		if acct == nil {
			return ErrAccountNotFound
		}

		issuer := s.recovery
		if tx != nil {
			issuer = issuer.WithTx(tx)
		}
		token, err := issuer.Issue(acct.Uuid)
		if err != nil {
			return err
		}
		result.Account = acct
		result.ResetToken = token.Token
	}

	return nil
}

// LatestPending exposes the newest usable code for a target+flow, for the
// support lookup path when delivery failed.
func (s *Service) LatestPending(email, phone string, flow otpModel.FlowType) (*otpModel.OTP, error) {
	target, err := NormalizeTarget(email, phone)
	if err != nil {
		return nil, err
	}
	return s.store.LatestPending(target.Value, flow, time.Now())
}

// PurgeExpiredBefore deletes rows whose validity ended before the cutoff.
func (s *Service) PurgeExpiredBefore(cutoff time.Time) (int64, error) {
	return s.store.DeleteExpiredBefore(cutoff)
}

func subjectFor(flow otpModel.FlowType) string {
	switch flow {
	case otpModel.FlowSignup:
		return "Confirm your registration"
	case otpModel.FlowRecovery:
		return "Reset your password"
	default:
		return "Your login code"
	}
}

func messageBody(code string, lifetime time.Duration) string {
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(lifetime.Minutes()))
}
