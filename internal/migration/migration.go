// Package migration creates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
package migration

import (
	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
	quotadomain "github.com/joseikin-rescue/server/internal/quota/domain"
	userdomain "github.com/joseikin-rescue/server/internal/user/domain"
	"gorm.io/gorm"
)

func Run(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&userdomain.User{},
		&quotadomain.QuotaRecord{},
		&quotadomain.PackPurchase{},
		&advisordomain.ChatTurn{},
	); err != nil {
		return err
	}
	return ensureActiveIndex(conn)
}

// ensureActiveIndex backs the one-active-record-per-user invariant with a
// partial unique index where the dialect supports it. MySQL has no partial
// indexes; there the service-level pre-check is the only guard.
func ensureActiveIndex(conn *gorm.DB) error {
	switch conn.Dialector.Name() {
	case "postgres", "sqlite":
		return conn.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_quota_records_active_user
			 ON quota_records (user_id) WHERE status = 'active'`,
		).Error
	default:
		return nil
	}
}
