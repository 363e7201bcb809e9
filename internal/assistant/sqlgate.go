package assistant

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

// SQLGate validates model-generated SQL before execution and records every
// statement and outcome in the query log. The checks are structural, not just
// a keyword scan: one statement, no comments, SELECT-only, and no mutating
// keyword anywhere. Violations are hard rejections; nothing is sanitized.
//
// This is defense in depth for a read-path feature, not a permissions
// boundary. The database user should still be read-only.
type SQLGate struct {
	db *gorm.DB
}

func NewSQLGate(db *gorm.DB) *SQLGate {
	return &SQLGate{db: db}
}

var mutatingKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"TRUNCATE", "REPLACE", "ATTACH", "DETACH", "PRAGMA",
	"GRANT", "REVOKE", "VACUUM", "REINDEX",
}

var wordPattern = regexp.MustCompile(`[A-Z_]+`)

// Validate rejects any statement that is not a single, comment-free,
// read-only SELECT. Returns nil when the statement may be executed.
// Checks run with string literals blanked out, so quoted text like
// venue = '%update%' never trips the keyword scan.
func (g *SQLGate) Validate(statement string) error {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return fmt.Errorf("empty statement")
	}

	stripped, err := stripStringLiterals(trimmed)
	if err != nil {
		return err
	}

	if strings.Contains(stripped, "--") || strings.Contains(stripped, "/*") {
		return fmt.Errorf("SQL comments are not allowed")
	}

	// A single trailing semicolon is tolerated; anything beyond it means a
	// second statement.
	body := strings.TrimSuffix(strings.TrimSpace(stripped), ";")
	if strings.Contains(body, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}

	upper := strings.ToUpper(body)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT statements are allowed")
	}

	words := wordPattern.FindAllString(upper, -1)
	for _, word := range words {
		for _, keyword := range mutatingKeywords {
			if word == keyword {
				return fmt.Errorf("statement contains disallowed keyword %s", keyword)
			}
		}
	}

	if strings.Contains(upper, "PASSWORD_HASH") {
		return fmt.Errorf("statement references a restricted column")
	}

	return nil
}

// stripStringLiterals replaces every single-quoted literal with an empty one,
// honoring the doubled-quote escape. An unterminated literal is an error.
func stripStringLiterals(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			continue
		}
		j := i + 1
		for {
			if j >= len(s) {
				return "", fmt.Errorf("unterminated string literal")
			}
			if s[j] == '\'' {
				if j+1 < len(s) && s[j+1] == '\'' {
					j += 2
					continue
				}
				break
			}
			j++
		}
		b.WriteString("''")
		i = j
	}
	return b.String(), nil
}

// Execute validates and runs the statement, returning every row as a
// key-value map. Both acceptance and rejection are appended to the query log;
// a rejected statement executes zero rows.
func (g *SQLGate) Execute(userID uint, question, statement string) ([]map[string]interface{}, error) {
	if err := g.Validate(statement); err != nil {
		g.logQuery(userID, question, statement, 0, err.Error())
		slog.Warn("sql gate rejected statement", "user_id", userID, "reason", err)
		return nil, fmt.Errorf("query rejected: %w", err)
	}

	rows, err := g.db.Raw(statement).Rows()
	if err != nil {
		g.logQuery(userID, question, statement, 0, err.Error())
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		g.logQuery(userID, question, statement, 0, err.Error())
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			g.logQuery(userID, question, statement, len(results), err.Error())
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		g.logQuery(userID, question, statement, len(results), err.Error())
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	g.logQuery(userID, question, statement, len(results), "")
	return results, nil
}

func (g *SQLGate) logQuery(userID uint, question, statement string, rowCount int, errText string) {
	entry := models.QueryLog{
		UserID:   userID,
		Question: question,
		Query:    statement,
		RowCount: rowCount,
		Error:    errText,
	}
	if err := g.db.Create(&entry).Error; err != nil {
		slog.Error("failed to write query log", "error", err)
	}
}
