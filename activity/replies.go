package activity

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AddReply persists a reply and increments the parent reply_count in the same
// transaction. ReplyToID must point at a reply of the same activity.
func (r *Repository) AddReply(ctx context.Context, record types.Reply) (*types.Reply, error) {
	if record.ActivityID == uuid.Nil {
		return nil, types.ErrActivityIDRequired
	}
	if record.CreatedBy == uuid.Nil {
		return nil, types.ErrActorRequired
	}
	if strings.TrimSpace(record.Text) == "" {
		return nil, types.ErrReplyTextRequired
	}
	if record.ID == uuid.Nil {
		record.ID = r.idGen.UUID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.clock.Now()
	}
	record.UpdatedAt = record.CreatedAt

	model := toReplyModel(record)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Activity)(nil)).
			Where("id = ?", record.ActivityID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return types.ErrActivityNotFound
		}
		if model.ReplyToID != nil {
			sibling, err := tx.NewSelect().
				Model((*Reply)(nil)).
				Where("id = ?", *model.ReplyToID).
				Where("activity_id = ?", record.ActivityID).
				Exists(ctx)
			if err != nil {
				return err
			}
			if !sibling {
				return types.ErrReplyToMismatch
			}
		}
		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return err
		}
		return r.incrementReplyCount(ctx, tx, record.ActivityID)
	})
	if err != nil {
		return nil, err
	}
	created := toReplyRecord(model)
	return &created, nil
}

// GetReply loads a reply that belongs to the activity.
func (r *Repository) GetReply(ctx context.Context, activityID, replyID uuid.UUID) (*types.Reply, error) {
	if activityID == uuid.Nil {
		return nil, types.ErrActivityIDRequired
	}
	if replyID == uuid.Nil {
		return nil, types.ErrReplyIDRequired
	}
	model, err := r.replies.Get(ctx,
		repository.SelectBy("id", "=", replyID.String()),
		repository.SelectBy("activity_id", "=", activityID.String()),
	)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrReplyNotFound
		}
		return nil, err
	}
	record := toReplyRecord(model)
	return &record, nil
}

// DeleteReply removes the reply, detaches replies that pointed at it and
// decrements the parent reply_count. A missing reply returns nil without
// error.
func (r *Repository) DeleteReply(ctx context.Context, activityID, replyID uuid.UUID) (*types.Reply, error) {
	if activityID == uuid.Nil {
		return nil, types.ErrActivityIDRequired
	}
	if replyID == uuid.Nil {
		return nil, types.ErrReplyIDRequired
	}
	var deleted *Reply
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		model := &Reply{}
		err := tx.NewSelect().
			Model(model).
			Where("id = ?", replyID).
			Where("activity_id = ?", activityID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().
			Model((*Reply)(nil)).
			Set("reply_to_id = NULL").
			Where("reply_to_id = ?", replyID).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*Reply)(nil)).Where("id = ?", replyID).Exec(ctx); err != nil {
			return err
		}
		if err := r.decrementReplyCount(ctx, tx, activityID); err != nil {
			return err
		}
		deleted = model
		return nil
	})
	if err != nil || deleted == nil {
		return nil, err
	}
	record := toReplyRecord(deleted)
	return &record, nil
}
