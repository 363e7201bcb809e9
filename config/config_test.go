package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Match{}))
	return db
}

func writeScheduleCSV(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMatchSchedule(t *testing.T) {
	t.Run("loads rows and replaces stale ones", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Create(&models.Match{MatchNumber: "STALE", Venue: "old"}).Error)

		path := writeScheduleCSV(t, "match_number,date,venue\nM1,2026-06-11,New York/New Jersey\nM2,2026-06-12,Toronto\n")
		require.NoError(t, LoadMatchSchedule(db, path))

		var matches []models.Match
		require.NoError(t, db.Order("match_number").Find(&matches).Error)
		require.Len(t, matches, 2)
		assert.Equal(t, "M1", matches[0].MatchNumber)
		assert.Equal(t, "New York/New Jersey", matches[0].Venue)

		var stale int64
		require.NoError(t, db.Model(&models.Match{}).Where("match_number = ?", "STALE").Count(&stale).Error)
		assert.Zero(t, stale)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		db := openTestDB(t)
		assert.Error(t, LoadMatchSchedule(db, filepath.Join(t.TempDir(), "nope.csv")))
	})

	t.Run("header-only file is an error", func(t *testing.T) {
		db := openTestDB(t)
		path := writeScheduleCSV(t, "match_number,date,venue\n")
		assert.Error(t, LoadMatchSchedule(db, path))
	})

	t.Run("bad date is an error", func(t *testing.T) {
		db := openTestDB(t)
		path := writeScheduleCSV(t, "match_number,date,venue\nM1,June 11,Toronto\n")
		assert.Error(t, LoadMatchSchedule(db, path))
	})
}

func TestSeedAdminUser(t *testing.T) {
	t.Run("creates admin on an empty database", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, seedAdminUser(db))

		var admin models.User
		require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
		assert.NotEmpty(t, admin.PasswordHash)
	})

	t.Run("does nothing when users exist", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Create(&models.User{Username: "alice", PasswordHash: "x"}).Error)
		require.NoError(t, seedAdminUser(db))

		var count int64
		require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}
