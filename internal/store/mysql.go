package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySqlStore persists interview records using GORM.
type MySqlStore struct {
	db *gorm.DB
}

// interviewRecord is the GORM row model. Exchanges and the assessment are
// stored as JSON blobs; the record is read back whole, never queried by
// exchange.
type interviewRecord struct {
	SessionID   string    `gorm:"type:char(36);primaryKey;not null"`
	UserID      string    `gorm:"size:255;index"`
	StartedAt   time.Time `gorm:"column:started_at"`
	CompletedAt time.Time `gorm:"column:completed_at"`
	Exchanges   string    `gorm:"type:json"`
	Assessment  string    `gorm:"type:json"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (interviewRecord) TableName() string { return "interview_records" }

// NewMySqlStore creates a new interview record store with a GORM connection.
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&interviewRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &MySqlStore{db: db}, nil
}

// Save upserts the record keyed on session ID.
func (s *MySqlStore) Save(ctx context.Context, record Record) error {
	exchanges, err := json.Marshal(record.Exchanges)
	if err != nil {
		return fmt.Errorf("failed to encode exchanges: %w", err)
	}
	assessment, err := json.Marshal(record.Assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	row := interviewRecord{
		SessionID:   record.SessionID,
		UserID:      record.UserID,
		StartedAt:   record.StartedAt,
		CompletedAt: record.CompletedAt,
		Exchanges:   string(exchanges),
		Assessment:  string(assessment),
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to save interview record: %w", result.Error)
	}

	return nil
}

// Get reads a record back by session ID.
func (s *MySqlStore) Get(ctx context.Context, sessionID string) (Record, error) {
	var row interviewRecord
	result := s.db.WithContext(ctx).First(&row, "session_id = ?", sessionID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return Record{}, fmt.Errorf("interview record not found")
		}
		return Record{}, fmt.Errorf("failed to get interview record: %w", result.Error)
	}

	record := Record{
		SessionID:   row.SessionID,
		UserID:      row.UserID,
		StartedAt:   row.StartedAt,
		CompletedAt: row.CompletedAt,
	}
	if err := json.Unmarshal([]byte(row.Exchanges), &record.Exchanges); err != nil {
		return Record{}, fmt.Errorf("failed to decode exchanges: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Assessment), &record.Assessment); err != nil {
		return Record{}, fmt.Errorf("failed to decode assessment: %w", err)
	}

	return record, nil
}
