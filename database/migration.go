package database

import (
	"fmt"

	"gorm.io/gorm"

	"storefront-auth/models/account"
	"storefront-auth/models/log"
	"storefront-auth/models/otp"
	"storefront-auth/models/recovery"
)

// Migrate runs auto migration for all models and creates the lookup
// indexes the hot paths depend on.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&account.Account{},
		&otp.OTP{},
		&recovery.Token{},
		&log.Log{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return createIndexes(db)
}

// createIndexes creates additional indexes beyond what the gorm tags declare.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Verification lookup: target + flow + consumed + expiry in one scan
		"CREATE INDEX IF NOT EXISTS idx_otps_pending ON otps(target, flow_type, consumed, expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_phone ON accounts(phone)",
		"CREATE INDEX IF NOT EXISTS idx_recovery_tokens_token ON recovery_tokens(token)",
		"CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)",
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
