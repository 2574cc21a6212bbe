package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/PabloGalante/myvfriend/internal/adapters/storage/record"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

// SessionRow is one user's record. The document column holds the same JSON
// the file and sqlite engines write.
type SessionRow struct {
	UserID    string         `gorm:"column:user_id;primaryKey"`
	Document  datatypes.JSON `gorm:"column:document;type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;index"`
}

func (SessionRow) TableName() string { return "user_sessions" }

type SessionStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects with dsn and migrates the sessions table.
func Open(ctx context.Context, dsn string) (*SessionStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return NewSessionStore(ctx, db)
}

// NewSessionStore wraps an open gorm handle and migrates the sessions table.
func NewSessionStore(ctx context.Context, db *gorm.DB) (*SessionStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&SessionRow{}); err != nil {
		return nil, fmt.Errorf("postgres migrate user_sessions: %w", err)
	}
	return &SessionStore{db: db, now: time.Now}, nil
}

func (s *SessionStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SessionStore) Load(ctx context.Context, userID domain.UserID) (*domain.UserSession, error) {
	var row SessionRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", string(userID)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: postgres load: %w", domain.ErrStoreUnavailable, err)
	}

	sess, err := record.Unmarshal(userID, row.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %w", domain.ErrStoreUnavailable, err)
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.UserSession) error {
	data, err := record.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: postgres: %w", domain.ErrStoreUnavailable, err)
	}

	row := SessionRow{
		UserID:    string(session.UserID),
		Document:  datatypes.JSON(data),
		UpdatedAt: s.now().UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: postgres save: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Truncate removes every record.
func (s *SessionStore) Truncate(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(`TRUNCATE TABLE user_sessions`).Error
}
