package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

func TestSQLGateValidate(t *testing.T) {
	gate := NewSQLGate(setupTestDB(t))

	allowed := []string{
		"SELECT * FROM tickets",
		"select username from users where id = 1",
		"SELECT * FROM tickets;",
		"WITH counts AS (SELECT user_id, COUNT(*) AS n FROM tickets GROUP BY user_id) SELECT * FROM counts",
		"SELECT created_at FROM tickets", // CREATED_AT must not trip CREATE
		"SELECT * FROM matches WHERE venue LIKE '%update%'",
		"SELECT * FROM tickets WHERE name = 'drop table'",
		"SELECT * FROM matches WHERE venue = 'a;b'",
		"SELECT * FROM matches WHERE venue = 'it''s -- here'",
	}
	for _, stmt := range allowed {
		assert.NoError(t, gate.Validate(stmt), stmt)
	}

	rejected := []string{
		"",
		"   ",
		"UPDATE tickets SET quantity = 0",
		"DELETE FROM tickets",
		"INSERT INTO users (username) VALUES ('x')",
		"DROP TABLE tickets",
		"SELECT * FROM tickets; DROP TABLE tickets;",
		"SELECT * FROM users -- hidden",
		"SELECT /* sneaky */ * FROM users",
		"PRAGMA table_info(users)",
		"SELECT password_hash FROM users",
		"EXPLAIN SELECT * FROM tickets",
		"SELECT * FROM users WHERE name = 'unterminated",
	}
	for _, stmt := range rejected {
		assert.Error(t, gate.Validate(stmt), stmt)
	}
}

func TestSQLGateExecute(t *testing.T) {
	db := setupTestDB(t)
	gate := NewSQLGate(db)

	users := seedUsers(t, db, "alice")
	m1 := seedMatch(t, db, "M1", day(time.June, 12), "Miami")
	seedTicket(t, db, users[0], m1, 2, "General")

	t.Run("valid select returns rows and logs", func(t *testing.T) {
		rows, err := gate.Execute(users[0].ID, "how many tickets", "SELECT match_number, quantity FROM tickets")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "M1", rows[0]["match_number"])

		var logged models.QueryLog
		require.NoError(t, db.Order("id DESC").First(&logged).Error)
		assert.Equal(t, users[0].ID, logged.UserID)
		assert.Equal(t, "how many tickets", logged.Question)
		assert.Equal(t, 1, logged.RowCount)
		assert.Empty(t, logged.Error)
	})

	t.Run("mutation is rejected, logged, and leaves data intact", func(t *testing.T) {
		rows, err := gate.Execute(users[0].ID, "zero them out", "UPDATE tickets SET quantity = 0")
		assert.Error(t, err)
		assert.Empty(t, rows)

		var logged models.QueryLog
		require.NoError(t, db.Order("id DESC").First(&logged).Error)
		assert.Equal(t, "UPDATE tickets SET quantity = 0", logged.Query)
		assert.NotEmpty(t, logged.Error)

		var ticket models.Ticket
		require.NoError(t, db.First(&ticket).Error)
		assert.Equal(t, 2, ticket.Quantity)
	})

	t.Run("stacked statement is rejected and the table survives", func(t *testing.T) {
		rows, err := gate.Execute(users[0].ID, "cleanup", "SELECT * FROM tickets; DROP TABLE tickets;")
		assert.Error(t, err)
		assert.Empty(t, rows)

		var count int64
		require.NoError(t, db.Model(&models.Ticket{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("invalid sql inside a valid shape returns the database error", func(t *testing.T) {
		rows, err := gate.Execute(users[0].ID, "typo", "SELECT * FROM no_such_table")
		assert.Error(t, err)
		assert.Empty(t, rows)

		var logged models.QueryLog
		require.NoError(t, db.Order("id DESC").First(&logged).Error)
		assert.NotEmpty(t, logged.Error)
		assert.Equal(t, 0, logged.RowCount)
	})
}
