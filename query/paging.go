package query

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-activities/activity"
	"github.com/goliatone/go-activities/pkg/types"
	opts "github.com/goliatone/go-options"
)

const (
	pagingKeyPage     = "page"
	pagingKeySize     = "page_size"
	pagingScopeSystem = "defaults"
	pagingScopeKind   = "kind"
	pagingScopeQuery  = "request"
)

// ResolvePaging layers the feed paging settings: library defaults, then the
// subject kind page size, then the request values. Invalid request values do
// not participate, so they fall back to the lower layers. The page size is
// capped at MaxPageSize.
func ResolvePaging(defaults PagingDefaults, kindPageSize int, params types.FeedParams) (types.Paging, error) {
	defaults = defaults.withDefaults()

	system := map[string]any{
		pagingKeyPage: defaults.Page,
		pagingKeySize: defaults.PageSize,
	}
	layers := []opts.Layer[map[string]any]{
		pagingLayer(pagingScopeSystem, "Feed defaults", opts.ScopePrioritySystem, system),
	}
	if kindPageSize > 0 {
		layers = append(layers, pagingLayer(pagingScopeKind, "Subject kind", opts.ScopePriorityTenant, map[string]any{
			pagingKeySize: kindPageSize,
		}))
	}
	request := map[string]any{}
	if page := activity.ParsePositive(params.Page, 0); page > 0 {
		request[pagingKeyPage] = page
	}
	if size := activity.ParsePositive(params.PageSize, 0); size > 0 {
		request[pagingKeySize] = size
	}
	if len(request) > 0 {
		layers = append(layers, pagingLayer(pagingScopeQuery, "Request", opts.ScopePriorityUser, request))
	}

	stack, err := opts.NewStack(layers...)
	if err != nil {
		return types.Paging{}, err
	}
	merged, err := stack.Merge()
	if err != nil {
		return types.Paging{}, err
	}

	paging := types.Paging{
		Page:     intValue(merged.Value[pagingKeyPage], defaults.Page),
		PageSize: intValue(merged.Value[pagingKeySize], defaults.PageSize),
	}
	if paging.PageSize > defaults.MaxPageSize {
		paging.PageSize = defaults.MaxPageSize
	}
	return paging, nil
}

func pagingLayer(name, label string, priority int, values map[string]any) opts.Layer[map[string]any] {
	scope := opts.NewScope(name, priority, opts.WithScopeLabel(label))
	return opts.NewLayer(scope, values, opts.WithSnapshotID[map[string]any](name))
}

func intValue(raw any, fallback int) int {
	var value int
	switch v := raw.(type) {
	case int:
		value = v
	case int64:
		value = int(v)
	case float64:
		value = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		value = parsed
	default:
		return fallback
	}
	if value < 1 {
		return fallback
	}
	return value
}
