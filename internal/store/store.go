package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lunchbuddy-backend/internal/model"
)

// Store defines the interface for the user directory.
type Store interface {
	// GetEnrolledUsers returns every active enrollment (enrolled and verified).
	GetEnrolledUsers(ctx context.Context) ([]model.User, error)
	// GetUser returns the active enrollment for a Telegram id, or nil if the
	// user has no active enrollment.
	GetUser(ctx context.Context, telegramID int64) (*model.User, error)
	// UpsertUser inserts or replaces an enrollment. A re-enrollment resets the
	// verification flag so the record goes back through review.
	UpsertUser(ctx context.Context, u model.User) error
	// RemoveUser soft-disables an enrollment. Returns false if the user was
	// not enrolled.
	RemoveUser(ctx context.Context, telegramID int64) (bool, error)
	// ApproveUser marks an enrolled user's record as verified.
	ApproveUser(ctx context.Context, telegramID int64) (bool, error)
	// CountEnrolled returns the number of active enrollments.
	CountEnrolled(ctx context.Context) (int64, error)
	// DB exposes the underlying handle for components that need direct access.
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) GetEnrolledUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Where("is_enrolled = ? AND is_verified = ?", true, true).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrolled users: %w", err)
	}
	return users, nil
}

func (s *gormStore) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("telegram_id = ? AND is_enrolled = ? AND is_verified = ?", telegramID, true, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", telegramID, err)
	}
	return &user, nil
}

func (s *gormStore) UpsertUser(ctx context.Context, u model.User) error {
	u.IsEnrolled = true
	u.IsVerified = false
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "dietary_preference", "preferred_days",
			"is_enrolled", "is_verified", "updated_at",
		}),
	}).Create(&u).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.TelegramID, err)
	}
	return nil
}

func (s *gormStore) RemoveUser(ctx context.Context, telegramID int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("telegram_id = ? AND is_enrolled = ?", telegramID, true).
		Updates(map[string]any{"is_enrolled": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove user %d: %w", telegramID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) ApproveUser(ctx context.Context, telegramID int64) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("telegram_id = ? AND is_enrolled = ?", telegramID, true).
		Updates(map[string]any{"is_verified": true, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to approve user %d: %w", telegramID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) CountEnrolled(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("is_enrolled = ? AND is_verified = ?", true, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count enrolled users: %w", err)
	}
	return n, nil
}
