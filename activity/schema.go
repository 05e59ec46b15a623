package activity

import (
	"context"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RegisterModels registers the activity models with go-persistence-bun so
// host clients pick them up for fixtures and migrations.
func RegisterModels() {
	persistence.RegisterModel((*Activity)(nil))
	persistence.RegisterModel((*Reply)(nil))
	persistence.RegisterModel((*AudienceEntry)(nil))
	persistence.RegisterModel((*AudienceLink)(nil))
}

type schemaIndex struct {
	model   any
	name    string
	columns []string
	unique  bool
}

var schemaIndexes = []schemaIndex{
	{model: (*Activity)(nil), name: "idx_activities_about", columns: []string{"about_id", "about_type", "created_at"}},
	{model: (*Activity)(nil), name: "idx_activities_creator", columns: []string{"created_by", "action", "privacy", "created_at"}},
	{model: (*Reply)(nil), name: "idx_activity_replies_activity", columns: []string{"activity_id", "created_at"}},
	{model: (*AudienceEntry)(nil), name: "idx_activity_audience_entries_subject", columns: []string{"subject_id", "subject_type"}, unique: true},
	{model: (*AudienceLink)(nil), name: "idx_activity_audience_entry", columns: []string{"entry_id"}},
}

// EnsureSchema creates the activity tables and indexes when missing. Hosts
// with their own migration pipeline can skip it.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*Activity)(nil),
		(*Reply)(nil),
		(*AudienceEntry)(nil),
		(*AudienceLink)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("activity: create table: %w", err)
		}
	}
	for _, idx := range schemaIndexes {
		q := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists()
		if idx.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("activity: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
