package activity

import (
	"context"
	"fmt"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Counter maintenance. All adjustments are relative updates evaluated by the
// database on the caller's transaction. A decrement of a counter at or below
// zero leaves it at zero and is recorded as a clamp, not an error.

func (r *Repository) incrementReplyCount(ctx context.Context, db bun.IDB, activityID uuid.UUID) error {
	_, err := db.NewUpdate().
		Model((*Activity)(nil)).
		Set("reply_count = reply_count + 1").
		Where("id = ?", activityID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("activity: increment reply_count: %w", err)
	}
	recordAdjustment(counterReplyCount, directionUp)
	return nil
}

func (r *Repository) decrementReplyCount(ctx context.Context, db bun.IDB, activityID uuid.UUID) error {
	res, err := db.NewUpdate().
		Model((*Activity)(nil)).
		Set("reply_count = reply_count - 1").
		Where("id = ?", activityID).
		Where("reply_count > 0").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("activity: decrement reply_count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		_, err = db.NewUpdate().
			Model((*Activity)(nil)).
			Set("reply_count = 0").
			Where("id = ?", activityID).
			Where("reply_count < 0").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("activity: reset reply_count: %w", err)
		}
		r.clamped(counterReplyCount, "activity_id", activityID.String())
		return nil
	}
	recordAdjustment(counterReplyCount, directionDown)
	return nil
}

func (r *Repository) incrementShareCount(ctx context.Context, db bun.IDB, about types.SubjectRef) error {
	counter, ok := r.subjects.ShareCounter(about)
	if !ok {
		return nil
	}
	if err := counter.IncrementShareCount(ctx, db, about.ID); err != nil {
		return fmt.Errorf("activity: increment share_count of %s: %w", about, err)
	}
	recordAdjustment(counterShareCount, directionUp)
	return nil
}

func (r *Repository) decrementShareCount(ctx context.Context, db bun.IDB, about types.SubjectRef) error {
	counter, ok := r.subjects.ShareCounter(about)
	if !ok {
		return nil
	}
	clamped, err := counter.DecrementShareCount(ctx, db, about.ID)
	if err != nil {
		return fmt.Errorf("activity: decrement share_count of %s: %w", about, err)
	}
	if clamped {
		r.clamped(counterShareCount, "subject", about.String())
		return nil
	}
	recordAdjustment(counterShareCount, directionDown)
	return nil
}

func (r *Repository) clamped(counter string, fields ...any) {
	recordClamp(counter)
	r.logger.Debug("activity: counter decrement clamped at zero", append([]any{"counter", counter}, fields...)...)
}
