package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table, one row per key per day
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalShifts  int    `gorm:"default:0" json:"total_shifts"`
	TotalMembers int    `gorm:"default:0" json:"total_members"`
	FailedRuns   int    `gorm:"default:0" json:"failed_runs"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to Postgres when dsn is set, otherwise to the sqlite file at
// path, and migrates the schema
func Open(dsn, path string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if path == "" {
			path = "api_keys.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}); err != nil {
		return nil, err
	}
	return db, nil
}

// InitDB opens the database configured by DATABASE_URL or DATA_PATH
func InitDB() *gorm.DB {
	db, err := Open(os.Getenv("DATABASE_URL"), os.Getenv("DATA_PATH"))
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	return db
}

// Today returns the usage row key for t
func Today(t time.Time) string {
	return t.Format("2006-01-02")
}

// RequestsOn returns how many requests key made on day
func RequestsOn(db *gorm.DB, keyID uint, day string) (int, error) {
	var usage APIUsage
	err := db.Where("key_id = ? AND date = ?", keyID, day).Limit(1).Find(&usage).Error
	return usage.RequestCount, err
}
