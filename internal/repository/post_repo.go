package repository

import (
	"errors"
	"sync"
	"time"

	"hotmess/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDailyLimitReached is returned when a user already has limit posts in the window.
var ErrDailyLimitReached = errors.New("daily post limit reached")

type PostRepository struct {
	db *gorm.DB
	// Per-user serialisation inside this process. Across processes the
	// locking read in the transaction does the job.
	stripes [32]sync.Mutex
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreateWithinLimit stores p unless p.UserID already has limit posts created
// at or after since. The count and the insert run in one transaction.
func (r *PostRepository) CreateWithinLimit(p *models.RightNowPost, since time.Time, limit int) error {
	mu := &r.stripes[p.UserID%uint(len(r.stripes))]
	mu.Lock()
	defer mu.Unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&models.RightNowPost{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND created_at >= ?", p.UserID, since).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n >= int64(limit) {
			return ErrDailyLimitReached
		}
		return tx.Create(p).Error
	})
}
