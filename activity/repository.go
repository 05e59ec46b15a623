package activity

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB          *bun.DB
	Activities  repository.Repository[*Activity]
	Replies     repository.Repository[*Reply]
	Subjects    *subject.Registry
	Clock       types.Clock
	IDGen       types.IDGenerator
	Logger      types.Logger
	MaxPageSize int
}

// Repository persists activities, replies and audiences. Every mutation runs
// in a single transaction together with its counter maintenance.
type Repository struct {
	db          *bun.DB
	activities  repository.Repository[*Activity]
	replies     repository.Repository[*Reply]
	subjects    *subject.Registry
	clock       types.Clock
	idGen       types.IDGenerator
	logger      types.Logger
	maxPageSize int
}

// NewRepository constructs the default activity repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("activity: db required")
	}
	activities := cfg.Activities
	if activities == nil {
		activities = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Activity]{
			NewRecord: func() *Activity { return &Activity{} },
			GetID: func(rec *Activity) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Activity, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	replies := cfg.Replies
	if replies == nil {
		replies = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Reply]{
			NewRecord: func() *Reply { return &Reply{} },
			GetID: func(rec *Reply) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Reply, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	subjects := cfg.Subjects
	if subjects == nil {
		subjects = subject.NewRegistry()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	maxPageSize := cfg.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	return &Repository{
		db:          cfg.DB,
		activities:  activities,
		replies:     replies,
		subjects:    subjects,
		clock:       clock,
		idGen:       idGen,
		logger:      logger,
		maxPageSize: maxPageSize,
	}, nil
}

var _ types.ActivityRepository = (*Repository)(nil)

// Activities exposes the underlying go-repository-bun store for transports.
func (r *Repository) Activities() repository.Repository[*Activity] {
	return r.activities
}

// Replies exposes the underlying reply store for transports.
func (r *Repository) Replies() repository.Repository[*Reply] {
	return r.replies
}

// CreateActivity validates and persists an activity, its audience and the
// share counter of the subject it is about.
func (r *Repository) CreateActivity(ctx context.Context, record types.Activity) (*types.Activity, error) {
	record, err := r.prepareActivity(record)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	model := toActivityModel(record)
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return r.insertActivity(ctx, tx, model, record, now)
	})
	if err != nil {
		return nil, err
	}
	created := toActivityRecord(model)
	return &created, nil
}

func (r *Repository) prepareActivity(record types.Activity) (types.Activity, error) {
	if record.CreatedBy == uuid.Nil {
		return record, types.ErrActorRequired
	}
	if !record.Action.Valid() {
		return record, types.ErrInvalidAction
	}
	if !record.Source.Valid() {
		return record, types.ErrInvalidSource
	}
	if record.Privacy == "" {
		record.Privacy = types.PrivacyPrivate
	}
	if !record.Privacy.Valid() {
		return record, types.ErrInvalidPrivacy
	}
	record.About = types.NewSubjectRef(record.About.Type, record.About.ID)
	if (record.About.Type == "") != (record.About.ID == "") {
		return record, types.ErrInvalidSubject
	}
	if record.ID == uuid.Nil {
		record.ID = r.idGen.UUID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.clock.Now()
	}
	record.UpdatedAt = record.CreatedAt
	record.ReplyCount = 0
	record.Replies = nil
	record.Audience = dedupeRefs(record.Audience)
	return record, nil
}

func (r *Repository) insertActivity(ctx context.Context, tx bun.Tx, model *Activity, record types.Activity, now time.Time) error {
	if model.GroupID != nil {
		if *model.GroupID == model.ID {
			return types.ErrGroupNotFound
		}
		exists, err := tx.NewSelect().
			Model((*Activity)(nil)).
			Where("id = ?", *model.GroupID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return types.ErrGroupNotFound
		}
	}
	if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
		return err
	}
	if err := r.linkAudience(ctx, tx, model.ID, record.Audience, now); err != nil {
		return err
	}
	if record.Action == types.ActionShared && record.HasAbout() {
		return r.incrementShareCount(ctx, tx, record.About)
	}
	return nil
}

// GetActivity loads an activity with its replies (oldest first) and audience.
func (r *Repository) GetActivity(ctx context.Context, id uuid.UUID) (*types.Activity, error) {
	if id == uuid.Nil {
		return nil, types.ErrActivityIDRequired
	}
	model, err := r.activities.GetByID(ctx, id.String(), withReplies())
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrActivityNotFound
		}
		return nil, err
	}
	audience, err := r.audienceFor(ctx, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	model.Audience = audience[model.ID]
	record := toActivityRecord(model)
	return &record, nil
}

// DeleteActivity removes the activity with its replies and audience links,
// detaches grouped activities and decrements the share counter of SHARED
// activities.
func (r *Repository) DeleteActivity(ctx context.Context, id uuid.UUID) (*types.Activity, error) {
	if id == uuid.Nil {
		return nil, types.ErrActivityIDRequired
	}
	model := &Activity{}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(model).Where("a.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrActivityNotFound
			}
			return err
		}
		return r.removeActivity(ctx, tx, model)
	})
	if err != nil {
		return nil, err
	}
	deleted := toActivityRecord(model)
	return &deleted, nil
}

func (r *Repository) removeActivity(ctx context.Context, tx bun.Tx, model *Activity) error {
	id := model.ID
	if _, err := tx.NewDelete().Model((*Reply)(nil)).Where("activity_id = ?", id).Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*AudienceLink)(nil)).Where("activity_id = ?", id).Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewUpdate().
		Model((*Activity)(nil)).
		Set("group_id = NULL").
		Where("group_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*Activity)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return err
	}
	record := toActivityRecord(model)
	if record.Action == types.ActionShared && record.HasAbout() {
		return r.decrementShareCount(ctx, tx, record.About)
	}
	return nil
}

// FindShare returns the latest SHARED activity the creator recorded about the
// subject, or nil when there is none.
func (r *Repository) FindShare(ctx context.Context, creator uuid.UUID, about types.SubjectRef) (*types.Activity, error) {
	if creator == uuid.Nil || about.IsZero() {
		return nil, nil
	}
	model, err := r.activities.Get(ctx,
		repository.SelectBy("created_by", "=", creator.String()),
		repository.SelectBy("action", "=", string(types.ActionShared)),
		repository.SelectBy("about_type", "=", about.Type),
		repository.SelectBy("about_id", "=", about.ID),
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("a.created_at DESC").Limit(1)
		},
	)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record := toActivityRecord(model)
	return &record, nil
}

// ToggleShare removes the creator's latest share of record.About when one
// exists and records record as a new share otherwise. The lookup and the
// mutation run in one transaction. unshared reports which branch ran; the
// returned activity is the deleted or the created record.
func (r *Repository) ToggleShare(ctx context.Context, record types.Activity) (*types.Activity, bool, error) {
	record.Action = types.ActionShared
	record, err := r.prepareActivity(record)
	if err != nil {
		return nil, false, err
	}
	if !record.HasAbout() {
		return nil, false, types.ErrInvalidSubject
	}
	now := r.clock.Now()
	model := toActivityModel(record)
	existing := &Activity{}
	unshared := false
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(existing).
			Where("a.created_by = ?", record.CreatedBy).
			Where("a.action = ?", string(types.ActionShared)).
			Where("a.about_type = ?", record.About.Type).
			Where("a.about_id = ?", record.About.ID).
			OrderExpr("a.created_at DESC").
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			unshared = true
			return r.removeActivity(ctx, tx, existing)
		case errors.Is(err, sql.ErrNoRows):
			return r.insertActivity(ctx, tx, model, record, now)
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	if unshared {
		deleted := toActivityRecord(existing)
		return &deleted, true, nil
	}
	created := toActivityRecord(model)
	return &created, false, nil
}

// IsAudienceMember reports whether the subject is part of the activity audience.
func (r *Repository) IsAudienceMember(ctx context.Context, activityID uuid.UUID, ref types.SubjectRef) (bool, error) {
	if activityID == uuid.Nil || ref.IsZero() {
		return false, nil
	}
	return r.db.NewSelect().
		TableExpr("activity_audience AS aa").
		Join("JOIN activity_audience_entries AS ae ON ae.id = aa.entry_id").
		Where("aa.activity_id = ?", activityID).
		Where("ae.subject_type = ?", ref.Type).
		Where("ae.subject_id = ?", ref.ID).
		Exists(ctx)
}

// ListAudience returns the audience of the activity ordered by type and id.
func (r *Repository) ListAudience(ctx context.Context, activityID uuid.UUID) ([]types.SubjectRef, error) {
	if activityID == uuid.Nil {
		return nil, types.ErrActivityIDRequired
	}
	audience, err := r.audienceFor(ctx, []uuid.UUID{activityID})
	if err != nil {
		return nil, err
	}
	return audience[activityID], nil
}

func (r *Repository) linkAudience(ctx context.Context, tx bun.Tx, activityID uuid.UUID, refs []types.SubjectRef, now time.Time) error {
	for _, ref := range refs {
		entryID, err := r.upsertAudienceEntry(ctx, tx, ref, now)
		if err != nil {
			return err
		}
		link := &AudienceLink{ActivityID: activityID, EntryID: entryID}
		if _, err := tx.NewInsert().Model(link).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) upsertAudienceEntry(ctx context.Context, tx bun.Tx, ref types.SubjectRef, now time.Time) (uuid.UUID, error) {
	entry := &AudienceEntry{
		ID:          r.idGen.UUID(),
		SubjectType: ref.Type,
		SubjectID:   ref.ID,
		CreatedAt:   now,
	}
	if _, err := tx.NewInsert().
		Model(entry).
		On("CONFLICT (subject_id, subject_type) DO NOTHING").
		Exec(ctx); err != nil {
		return uuid.Nil, err
	}
	var existing AudienceEntry
	if err := tx.NewSelect().
		Model(&existing).
		Where("subject_type = ?", ref.Type).
		Where("subject_id = ?", ref.ID).
		Limit(1).
		Scan(ctx); err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}

type audienceRow struct {
	ActivityID  uuid.UUID `bun:"activity_id"`
	SubjectType string    `bun:"subject_type"`
	SubjectID   string    `bun:"subject_id"`
}

func (r *Repository) audienceFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]types.SubjectRef, error) {
	out := make(map[uuid.UUID][]types.SubjectRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []audienceRow
	err := r.db.NewSelect().
		TableExpr("activity_audience AS aa").
		Join("JOIN activity_audience_entries AS ae ON ae.id = aa.entry_id").
		ColumnExpr("aa.activity_id, ae.subject_type, ae.subject_id").
		Where("aa.activity_id IN (?)", bun.In(ids)).
		OrderExpr("ae.subject_type ASC, ae.subject_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ActivityID] = append(out[row.ActivityID], types.SubjectRef{
			Type: row.SubjectType,
			ID:   row.SubjectID,
		})
	}
	return out, nil
}

func withReplies() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Replies", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ar.created_at ASC, ar.id ASC")
		})
	}
}

func dedupeRefs(refs []types.SubjectRef) []types.SubjectRef {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[types.SubjectRef]struct{}, len(refs))
	out := make([]types.SubjectRef, 0, len(refs))
	for _, ref := range refs {
		ref = types.NewSubjectRef(ref.Type, ref.ID)
		if ref.Type == "" || ref.ID == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedKinds(groups map[string][]string) []string {
	kinds := make([]string, 0, len(groups))
	for kind := range groups {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func normalizeRefs(refs []types.SubjectRef) []types.SubjectRef {
	out := make([]types.SubjectRef, 0, len(refs))
	for _, ref := range refs {
		ref = types.NewSubjectRef(ref.Type, ref.ID)
		if ref.Type == "" || ref.ID == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}
