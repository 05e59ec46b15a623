package activity

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListFeed returns one page of activities newest first. The filter selects
// activities about any of the About subjects, or activities whose audience
// contains Audience. Rows the viewer may not read are excluded. A page past
// the end is served as the last page.
func (r *Repository) ListFeed(ctx context.Context, filter types.FeedFilter) (types.FeedPage, error) {
	paging := normalizePaging(filter.Paging, r.maxPageSize)
	about := normalizeRefs(filter.About)
	if len(about) == 0 && filter.Audience.IsZero() {
		return types.FeedPage{}, types.ErrSubjectRequired
	}
	apply := func(q *bun.SelectQuery) *bun.SelectQuery {
		q = r.applyFeedSubject(q, about, filter.Audience)
		q = r.applyVisibility(q, filter.Viewer)
		if filter.Source != "" {
			q = q.Where("a.source = ?", string(filter.Source))
		}
		if filter.Action != "" {
			q = q.Where("a.action = ?", string(filter.Action))
		}
		return q
	}

	total, err := r.db.NewSelect().Model((*Activity)(nil)).Apply(apply).Count(ctx)
	if err != nil {
		return types.FeedPage{}, err
	}
	served := ClampPage(paging.Page, total, paging.PageSize)
	if served != paging.Page {
		r.logger.Debug("activity: feed page clamped", "requested", paging.Page, "served", served, "total", total)
	}
	paging.Page = served
	totalPages := TotalPages(total, paging.PageSize)

	page := types.FeedPage{
		Items:      []types.Activity{},
		Page:       served,
		PageSize:   paging.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    served < totalPages,
	}
	if total == 0 {
		return page, nil
	}

	rows, _, err := r.activities.List(ctx,
		apply,
		withReplies(),
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("a.created_at DESC, a.id DESC").
				Limit(paging.PageSize).
				Offset(paging.Offset())
		},
	)
	if err != nil {
		return types.FeedPage{}, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	audience, err := r.audienceFor(ctx, ids)
	if err != nil {
		return types.FeedPage{}, err
	}
	for _, row := range rows {
		row.Audience = audience[row.ID]
		page.Items = append(page.Items, toActivityRecord(row))
	}
	return page, nil
}

// SharedBy reports which of the subjects the creator has a live SHARED
// activity about. Every requested subject is present in the map.
func (r *Repository) SharedBy(ctx context.Context, creator uuid.UUID, refs []types.SubjectRef) (types.SharedMap, error) {
	refs = normalizeRefs(refs)
	shared := make(types.SharedMap, len(refs))
	if creator == uuid.Nil || len(refs) == 0 {
		return shared, nil
	}
	for _, ref := range refs {
		shared[ref] = false
	}

	type sharedRow struct {
		AboutType string `bun:"about_type"`
		AboutID   string `bun:"about_id"`
	}
	var rows []sharedRow
	err := r.db.NewSelect().
		Model((*Activity)(nil)).
		ColumnExpr("a.about_type, a.about_id").
		Where("a.created_by = ?", creator).
		Where("a.action = ?", string(types.ActionShared)).
		WhereGroup(" AND ", aboutAny(refs)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ref := types.SubjectRef{Type: row.AboutType, ID: row.AboutID}
		if _, ok := shared[ref]; ok {
			shared[ref] = true
		}
	}
	return shared, nil
}

// ActionStats counts the activities about the subjects per action, limited to
// the rows the viewer may read.
func (r *Repository) ActionStats(ctx context.Context, viewer types.ActorRef, about []types.SubjectRef) (types.ActionStats, error) {
	stats := types.ActionStats{
		ByAction: make(map[types.Action]int),
	}
	about = normalizeRefs(about)
	if len(about) == 0 {
		return stats, types.ErrSubjectRequired
	}
	type statsRow struct {
		Action string `bun:"action"`
		Total  int    `bun:"total"`
	}
	var rows []statsRow
	query := r.db.NewSelect().
		Model((*Activity)(nil)).
		ColumnExpr("a.action AS action").
		ColumnExpr("COUNT(*) AS total").
		WhereGroup(" AND ", aboutAny(about)).
		GroupExpr("a.action")
	query = r.applyVisibility(query, viewer)
	if err := query.Scan(ctx, &rows); err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.ByAction[types.Action(row.Action)] = row.Total
		stats.Total += row.Total
	}
	return stats, nil
}

func (r *Repository) applyFeedSubject(q *bun.SelectQuery, about []types.SubjectRef, audience types.SubjectRef) *bun.SelectQuery {
	if len(about) > 0 {
		return q.WhereGroup(" AND ", aboutAny(about))
	}
	return q.Where("a.id IN (?)", r.audienceSubquery(audience))
}

// applyVisibility keeps PUBLIC rows, rows created by the viewer and rows whose
// audience contains the viewer. Anonymous viewers only see PUBLIC rows.
func (r *Repository) applyVisibility(q *bun.SelectQuery, viewer types.ActorRef) *bun.SelectQuery {
	if viewer.IsAnonymous() {
		return q.Where("a.privacy = ?", string(types.PrivacyPublic))
	}
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("a.privacy = ?", string(types.PrivacyPublic)).
			WhereOr("a.created_by = ?", viewer.ID).
			WhereOr("a.id IN (?)", r.audienceSubquery(viewer.Subject()))
	})
}

func (r *Repository) audienceSubquery(ref types.SubjectRef) *bun.SelectQuery {
	return r.db.NewSelect().
		TableExpr("activity_audience AS aa").
		ColumnExpr("aa.activity_id").
		Join("JOIN activity_audience_entries AS ae ON ae.id = aa.entry_id").
		Where("ae.subject_type = ?", ref.Type).
		Where("ae.subject_id = ?", ref.ID)
}

// aboutAny matches rows about any of the subjects with one IN list per kind.
func aboutAny(refs []types.SubjectRef) func(*bun.SelectQuery) *bun.SelectQuery {
	groups := subject.GroupByKind(refs)
	kinds := sortedKinds(groups)
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, kind := range kinds {
			q = q.WhereOr("(a.about_type = ? AND a.about_id IN (?))", kind, bun.In(groups[kind]))
		}
		return q
	}
}
