package usage

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gl11tchy/test-project-2/app/models"
)

// Window is the trailing period over which usage is aggregated. There is no
// reset job; the window rolls naturally because it is recomputed per read.
const Window = 24 * time.Hour

// Stats is the aggregate over a user's usage records inside the window.
type Stats struct {
	Count       int64
	TotalTokens int64
}

// Repository provides DB operations used by the ledger.
type Repository interface {
	Insert(rec *models.AIUsage) error
	CountSince(userID uint, since time.Time) (Stats, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a usage repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Insert(rec *models.AIUsage) error {
	return r.db.Create(rec).Error
}

func (r *gormRepository) CountSince(userID uint, since time.Time) (Stats, error) {
	var stats Stats
	err := r.db.Model(&models.AIUsage{}).
		Select("COUNT(*) AS count, COALESCE(SUM(input_tokens + output_tokens), 0) AS total_tokens").
		Where("user_id = ? AND created_at > ?", userID, since).
		Scan(&stats).Error
	return stats, err
}

// Ledger counts and records per-user AI requests within the rolling window.
type Ledger struct {
	repo Repository
}

// NewLedger creates a ledger from an injected repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// NewLedgerFromDB creates a ledger from a GORM DB handle.
func NewLedgerFromDB(db *gorm.DB) *Ledger {
	return NewLedger(NewRepository(db))
}

// Record appends one usage event. It is best-effort: a failed write is logged
// once and swallowed so that it can never abort a chat response that has
// already been streamed to the client.
func (l *Ledger) Record(userID uint, inputTokens, outputTokens int, model string) {
	rec := &models.AIUsage{
		ID:           uuid.NewString(),
		UserID:       userID,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Model:        model,
	}
	if err := l.repo.Insert(rec); err != nil {
		log.Printf("usage: failed to record usage for user %d: %v", userID, err)
	}
}

// CountToday aggregates the user's usage over the trailing 24 hours. A read
// failure is logged and reported as zero usage so that a transient storage
// problem degrades to the free-tier experience instead of blocking all chat.
func (l *Ledger) CountToday(userID uint, now time.Time) Stats {
	stats, err := l.repo.CountSince(userID, now.Add(-Window))
	if err != nil {
		log.Printf("usage: failed to count usage for user %d: %v", userID, err)
		return Stats{}
	}
	return stats
}
