package postgres

import (
	"consolidation/internal/adapters/out/postgres/batchrepo"
	"consolidation/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the batch store schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&batchrepo.BatchDTO{},
		&batchrepo.BatchMemberDTO{},
	)
}
