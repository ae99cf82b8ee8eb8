package usage

import (
	"errors"
	"testing"
	"time"

	"github.com/gl11tchy/test-project-2/app/models"
)

type fakeRepository struct {
	records    []*models.AIUsage
	insertErr  error
	countErr   error
	countStats Stats
	lastSince  time.Time
}

func (r *fakeRepository) Insert(rec *models.AIUsage) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRepository) CountSince(userID uint, since time.Time) (Stats, error) {
	r.lastSince = since
	if r.countErr != nil {
		return Stats{}, r.countErr
	}
	return r.countStats, nil
}

func TestRecordAssignsIDAndPersists(t *testing.T) {
	repo := &fakeRepository{}
	ledger := NewLedger(repo)

	ledger.Record(7, 12, 42, "claude-sonnet-4-20250514")

	if len(repo.records) != 1 {
		t.Fatalf("expected one record, got %d", len(repo.records))
	}
	rec := repo.records[0]
	if rec.ID == "" {
		t.Fatalf("expected a generated record id")
	}
	if rec.UserID != 7 || rec.InputTokens != 12 || rec.OutputTokens != 42 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Model != "claude-sonnet-4-20250514" {
		t.Fatalf("unexpected model %q", rec.Model)
	}
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	repo := &fakeRepository{insertErr: errors.New("db down")}
	ledger := NewLedger(repo)

	// Must not panic or surface the error; streaming already finished.
	ledger.Record(7, 1, 2, "model")
}

func TestCountTodayUsesRollingWindow(t *testing.T) {
	repo := &fakeRepository{countStats: Stats{Count: 3, TotalTokens: 900}}
	ledger := NewLedger(repo)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := ledger.CountToday(7, now)

	if stats.Count != 3 || stats.TotalTokens != 900 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if want := now.Add(-Window); !repo.lastSince.Equal(want) {
		t.Fatalf("expected window start %v, got %v", want, repo.lastSince)
	}
}

func TestCountTodayFailsOpen(t *testing.T) {
	repo := &fakeRepository{countErr: errors.New("db down")}
	ledger := NewLedger(repo)

	stats := ledger.CountToday(7, time.Now())
	if stats.Count != 0 || stats.TotalTokens != 0 {
		t.Fatalf("expected zero stats on read failure, got %+v", stats)
	}
}
