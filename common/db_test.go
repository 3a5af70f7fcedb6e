package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"generalstuff/models"
)

func TestConnectDb_RequiresPath(t *testing.T) {
	_, err := ConnectDb("", zap.NewNop())
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestConnectDb_TranslatesDuplicates(t *testing.T) {
	db, err := ConnectDb(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}))

	require.NoError(t, db.Create(&models.Account{Username: "ivan", PasswordHash: "x"}).Error)
	err = db.Create(&models.Account{Username: "ivan", PasswordHash: "y"}).Error

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestConnectDb_LogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	db, err := ConnectDb(filepath.Join(t.TempDir(), "test.db"), zap.New(core))
	require.NoError(t, err)

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)

	gormLogs := logs.FilterLoggerName("gorm").All()
	require.NotEmpty(t, gormLogs)
	assert.Contains(t, gormLogs[0].Message, "missing_table")
}
