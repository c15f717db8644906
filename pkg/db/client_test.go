package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
)

type note struct {
	ID   int
	Body string
}

func openNotes(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&note{}))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return Wrap(conn)
}

func countNotes(t *testing.T, c *Client) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&note{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	c := openNotes(t)

	err := c.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&note{Body: "kept"}).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, countNotes(t, c))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	c := openNotes(t)
	boom := errors.New("boom")

	err := c.WithTx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&note{Body: "dropped"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, countNotes(t, c))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	c := openNotes(t)

	assert.Panics(t, func() {
		_ = c.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&note{Body: "dropped"})
			panic("handler bug")
		})
	})
	assert.Zero(t, countNotes(t, c))
}

func TestWrapDetectsDialect(t *testing.T) {
	c := openNotes(t)
	assert.Equal(t, DialectSQLite, c.Dialect())
	assert.NoError(t, c.Ping(context.Background()))
}

func TestOpenRequiresLocation(t *testing.T) {
	_, _, err := open(config.DBConfig{}, config.FeatureFlagsConfig{})
	assert.ErrorContains(t, err, "DSN")

	_, _, err = open(config.DBConfig{}, config.FeatureFlagsConfig{UseSQLite: true})
	assert.ErrorContains(t, err, "sqlite path")

	_, dialect, err := open(config.DBConfig{DSN: "postgres://localhost/x"}, config.FeatureFlagsConfig{})
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, dialect)
}
