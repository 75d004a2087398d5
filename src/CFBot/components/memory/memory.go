package memory

import (
	"context"
	"errors"
	"log"

	"github.com/castforge/castforge/src/shared/types"
	"gorm.io/gorm"
)

// keepPerUser is the retention cap on conversation records.
const keepPerUser = 5

// Context is the slice of history the decision engine sees.
type Context struct {
	CreationCount int64
	LastAction    string
}

// Store is the bounded per-user interaction log plus the lifetime creation
// counter. Retention is enforced by an asynchronous trim after each insert,
// not by the write path, so brief over-retention between insert and trim is
// expected.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends one interaction and schedules the retention trim.
func (s *Store) Record(ctx context.Context, conv types.Conversation) error {
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return err
	}
	go s.trim(conv.UserFID)
	return nil
}

// Context returns the user's lifetime creation count and most recent action.
func (s *Store) Context(ctx context.Context, userFID uint64) Context {
	var out Context
	if err := s.db.WithContext(ctx).Model(&types.TokenCreation{}).
		Where("user_fid = ?", userFID).Count(&out.CreationCount).Error; err != nil {
		log.Printf("memory: creation count for %d: %v", userFID, err)
	}
	var last types.Conversation
	err := s.db.WithContext(ctx).Where("user_fid = ?", userFID).
		Order("id DESC").First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("memory: last conversation for %d: %v", userFID, err)
	}
	out.LastAction = last.Action
	return out
}

func (s *Store) trim(userFID uint64) {
	var keep []uint64
	if err := s.db.Model(&types.Conversation{}).
		Where("user_fid = ?", userFID).
		Order("id DESC").Limit(keepPerUser).
		Pluck("id", &keep).Error; err != nil {
		log.Printf("memory: trim lookup for %d: %v", userFID, err)
		return
	}
	if len(keep) < keepPerUser {
		return
	}
	if err := s.db.Where("user_fid = ? AND id NOT IN ?", userFID, keep).
		Delete(&types.Conversation{}).Error; err != nil {
		log.Printf("memory: trim for %d: %v", userFID, err)
	}
}
