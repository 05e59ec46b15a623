package query

import (
	"testing"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestResolvePaging_Layers(t *testing.T) {
	paging, err := ResolvePaging(PagingDefaults{}, 0, types.FeedParams{})
	require.NoError(t, err)
	require.Equal(t, types.Paging{Page: 1, PageSize: 15}, paging)

	paging, err = ResolvePaging(PagingDefaults{}, 6, types.FeedParams{Page: "3"})
	require.NoError(t, err)
	require.Equal(t, types.Paging{Page: 3, PageSize: 6}, paging)

	paging, err = ResolvePaging(PagingDefaults{}, 6, types.FeedParams{PageSize: "9"})
	require.NoError(t, err)
	require.Equal(t, types.Paging{Page: 1, PageSize: 9}, paging)

	paging, err = ResolvePaging(PagingDefaults{PageSize: 20, MaxPageSize: 50}, 0, types.FeedParams{Page: "abc", PageSize: "5000"})
	require.NoError(t, err)
	require.Equal(t, types.Paging{Page: 1, PageSize: 50}, paging)

	paging, err = ResolvePaging(PagingDefaults{PageSize: 20}, 0, types.FeedParams{Page: "-5", PageSize: "0"})
	require.NoError(t, err)
	require.Equal(t, types.Paging{Page: 1, PageSize: 20}, paging)
}
