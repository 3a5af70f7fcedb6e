package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"generalstuff/models"
)

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.Profile{},
		&models.Post{},
		&models.Comment{},
		&models.Tagline{},
	}
}

func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(All()...); err != nil {
		log.Error("error running migrations", zap.Error(err))
		return err
	}

	log.Info("migrations completed successfully")
	return nil
}
