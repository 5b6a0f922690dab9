package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lms/backend/models"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Reconciler refreshes course progress of every user with submissions.
// Completion depends on the global test count, which changes whenever a test
// is added or removed without anyone submitting.
type Reconciler struct {
	DB        *gorm.DB
	Tracker   *Tracker
	Logger    *slog.Logger
	scheduler *gocron.Scheduler
}

func NewReconciler(db *gorm.DB, tracker *Tracker, logger *slog.Logger) *Reconciler {
	return &Reconciler{DB: db, Tracker: tracker, Logger: logger}
}

// ReconcileAll recomputes course progress user by user, each in its own
// transaction, and returns how many users were refreshed. Deleted users are
// skipped.
func (r *Reconciler) ReconcileAll(ctx context.Context) (int, error) {
	var userIDs []uint
	err := r.DB.WithContext(ctx).
		Model(&models.TestProgress{}).
		Joins("JOIN users ON users.id = test_progress.user_id AND users.deleted_at IS NULL").
		Distinct().
		Order("test_progress.user_id").
		Pluck("test_progress.user_id", &userIDs).Error
	if err != nil {
		return 0, storeError("list users with progress", err)
	}

	done := 0
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := r.Tracker.RecomputeCourse(ctx, id); err != nil {
			// deleted between listing and recompute
			if errors.Is(err, ErrNotFound) {
				r.Logger.Warn("skipping user without account", "user_id", id)
				continue
			}
			return done, err
		}
		done++
	}
	return done, nil
}

// Start runs ReconcileAll every interval until Stop. Runs never overlap.
func (r *Reconciler) Start(interval time.Duration) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(interval).Do(func() {
		n, err := r.ReconcileAll(context.Background())
		if err != nil {
			r.Logger.Error("progress reconciliation failed", "reconciled", n, "error", err)
			return
		}
		r.Logger.Info("progress reconciled", "users", n)
	})
	if err != nil {
		return err
	}
	s.StartAsync()
	r.scheduler = s
	return nil
}

func (r *Reconciler) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
