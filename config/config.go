package config

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vulkenree/fifa-tickets-app/internal/models"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		SQLitePath: os.Getenv("SQLITE_PATH"),
	}, nil
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

func LoadOpenAIConfig() (*OpenAIConfig, error) {
	return &OpenAIConfig{
		APIKey: os.Getenv("OPENAI_API_KEY"),
		Model:  os.Getenv("OPENAI_MODEL"),
	}, nil
}

// InitDatabase opens postgres when DB_HOST is configured, otherwise falls
// back to a local sqlite file for development.
func InitDatabase(cfg *Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.DBHost != "" {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		path := cfg.SQLitePath
		if path == "" {
			path = "fifa_tickets.db"
		}
		slog.Info("DB_HOST not set, using sqlite", "path", path)
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.Ticket{},
		&models.Conversation{},
		&models.Message{},
		&models.QueryLog{},
	)
	if err != nil {
		return nil, err
	}

	if err := seedAdminUser(db); err != nil {
		return nil, err
	}

	schedulePath := os.Getenv("MATCH_SCHEDULE_PATH")
	if schedulePath == "" {
		schedulePath = "data/fifa_match_schedule.csv"
	}
	if err := LoadMatchSchedule(db, schedulePath); err != nil {
		slog.Warn("match schedule not loaded", "path", schedulePath, "error", err)
	}

	return db, nil
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{Username: "admin", PasswordHash: string(hashed)}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	slog.Info("default admin user created", "username", admin.Username)
	return nil
}

// LoadMatchSchedule replaces the match lookup table with the rows of the
// fixture CSV (columns: match_number, date, venue). Dates are parsed as
// plain calendar days to keep them timezone-stable.
func LoadMatchSchedule(db *gorm.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading schedule csv: %w", err)
	}
	if len(records) < 2 {
		return fmt.Errorf("schedule csv has no data rows")
	}

	if err := db.Where("1 = 1").Delete(&models.Match{}).Error; err != nil {
		return err
	}

	matches := make([]models.Match, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 3 {
			continue
		}
		date, err := time.Parse("2006-01-02", row[1])
		if err != nil {
			return fmt.Errorf("parsing date for %s: %w", row[0], err)
		}
		matches = append(matches, models.Match{
			MatchNumber: row[0],
			Date:        date,
			Venue:       row[2],
		})
	}

	if err := db.Create(&matches).Error; err != nil {
		return err
	}
	slog.Info("match schedule loaded", "matches", len(matches))
	return nil
}
