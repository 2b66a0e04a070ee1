package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type userRow struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

// SQLiteUsers stores accounts in a sqlite database so they survive restarts.
type SQLiteUsers struct {
	db *gorm.DB
}

// NewSQLiteUsers opens (or creates) the database at path and migrates the
// users table. Use ":memory:" for a throwaway database.
func NewSQLiteUsers(path string) (*SQLiteUsers, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("migrate users table: %w", err)
	}

	return &SQLiteUsers{db: db}, nil
}

func (s *SQLiteUsers) Create(ctx context.Context, u User) error {
	row := userRow{Username: u.Username, PasswordHash: u.PasswordHash}

	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	if err != nil {
		// Older sqlite drivers do not translate constraint errors.
		if _, findErr := s.FindByUsername(ctx, u.Username); findErr == nil {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteUsers) FindByUsername(ctx context.Context, username string) (User, error) {
	var row userRow

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return User{Username: row.Username, PasswordHash: row.PasswordHash}, nil
}

// Close closes the underlying connection pool.
func (s *SQLiteUsers) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
