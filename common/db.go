package common

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoDatabase = errors.New("sqlite_db not set")

// ConnectDb opens the sqlite database at dbFile. Driver errors such as unique
// constraint violations are translated into gorm's sentinel errors, and gorm's
// own warnings go to zlog under the "gorm" name.
func ConnectDb(dbFile string, zlog *zap.Logger) (*gorm.DB, error) {
	zlog.Info("attempting to open sqlite db", zap.String("sqlite_db", dbFile))
	if dbFile == "" {
		return nil, ErrNoDatabase
	}

	gormLog, err := zap.NewStdLogAt(zlog.Named("gorm"), zap.WarnLevel)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: logger.New(
			gormLog,
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	zlog.Info("opened sqlite db", zap.String("sqlite_db", dbFile))
	return db, nil
}
