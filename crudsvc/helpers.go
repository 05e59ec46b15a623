package crudsvc

import (
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-crud"
	"github.com/google/uuid"
)

// Feed query-string keys.
const (
	ParamPage     = "ap"
	ParamPageSize = "aps"
	ParamSource   = "as"
	ParamAction   = "aa"
)

func queryUUID(ctx crud.Context, key string) uuid.UUID {
	return parseUUID(ctx.Query(key))
}

func paramUUID(ctx crud.Context, key string) uuid.UUID {
	return parseUUID(ctx.Params(key))
}

func parseUUID(raw string) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// querySubjects reads "about=post:1,post:2" or the about_type/about_id pair.
func querySubjects(ctx crud.Context) []types.SubjectRef {
	var refs []types.SubjectRef
	if raw := strings.TrimSpace(ctx.Query("about")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			ref, err := types.ParseSubjectRef(part)
			if err != nil {
				continue
			}
			refs = append(refs, ref)
		}
	}
	if typ, id := ctx.Query("about_type"), ctx.Query("about_id"); typ != "" && id != "" {
		refs = append(refs, types.NewSubjectRef(typ, id))
	}
	return refs
}

func feedParams(ctx crud.Context) types.FeedParams {
	return types.FeedParams{
		Page:     ctx.Query(ParamPage),
		PageSize: ctx.Query(ParamPageSize),
		Source:   ctx.Query(ParamSource),
		Action:   ctx.Query(ParamAction),
	}
}
