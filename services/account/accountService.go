package account

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront-auth/constants"
	accountModel "storefront-auth/models/account"
	otpModel "storefront-auth/models/otp"
	otpService "storefront-auth/services/otp"
)

// Service is the GORM-backed account store. It implements
// otpService.AccountStore.
type Service struct {
	db         *gorm.DB
	bcryptCost int
}

// NewService creates the account service. Cost outside bcrypt's range
// falls back to the bcrypt default.
func NewService(db *gorm.DB, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{db: db, bcryptCost: bcryptCost}
}

// WithTx returns a view of the service bound to the given transaction.
func (s *Service) WithTx(tx *gorm.DB) otpService.AccountStore {
	if tx == nil {
		return s
	}
	return &Service{db: tx, bcryptCost: s.bcryptCost}
}

// Exists reports whether an account is registered for the target.
func (s *Service) Exists(target otpService.Target) (bool, error) {
	var count int64
	err := s.query(target).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return count > 0, nil
}

// FindByTarget fetches the account for a normalized target, nil if none.
func (s *Service) FindByTarget(target otpService.Target) (*accountModel.Account, error) {
	var acct accountModel.Account

	err := s.query(target).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &acct, nil
}

// FindByUuid fetches an account by its public identifier, nil if none.
func (s *Service) FindByUuid(accountUuid string) (*accountModel.Account, error) {
	var acct accountModel.Account

	err := s.db.Where("uuid = ?", accountUuid).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &acct, nil
}

// Create registers a new account for the target with the user role. The
// password is bcrypt-hashed before anything touches the database.
func (s *Service) Create(target otpService.Target, password string) (*accountModel.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := &accountModel.Account{
		Uuid:         uuid.NewString(),
		PasswordHash: string(hash),
		Role:         constants.RoleUser,
	}
	switch target.Channel {
	case otpModel.ChannelEmail:
		email := target.Value
		acct.Email = &email
	case otpModel.ChannelPhone:
		phone := target.Value
		acct.Phone = &phone
	}

	if err := s.db.Create(acct).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return acct, nil
}

// UpdatePassword rewrites the account's password hash.
func (s *Service) UpdatePassword(accountUuid, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	res := s.db.Model(&accountModel.Account{}).
		Where("uuid = ?", accountUuid).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return otpService.ErrAccountNotFound
	}

	return nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (s *Service) VerifyPassword(acct *accountModel.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) == nil
}

func (s *Service) query(target otpService.Target) *gorm.DB {
	if target.Channel == otpModel.ChannelEmail {
		return s.db.Model(&accountModel.Account{}).Where("email = ?", target.Value)
	}
	return s.db.Model(&accountModel.Account{}).Where("phone = ?", target.Value)
}
