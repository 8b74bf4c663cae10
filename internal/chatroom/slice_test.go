package chatroom

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCutPageTrimsLookaheadRow(t *testing.T) {
	page := CutPage([]int{1, 2, 3, 4, 5, 6}, 5)
	require.True(t, page.HasMore)
	require.Equal(t, []int{1, 2, 3, 4, 5}, page.Items)
}

func TestCutPageShortResult(t *testing.T) {
	page := CutPage([]int{1, 2}, 5)
	require.False(t, page.HasMore)
	require.Equal(t, []int{1, 2}, page.Items)
}

func TestCutPageExactPageSize(t *testing.T) {
	page := CutPage([]int{1, 2, 3}, 3)
	require.False(t, page.HasMore)
	require.Len(t, page.Items, 3)
}

func TestCutPageEmpty(t *testing.T) {
	page := CutPage([]int{}, 5)
	require.False(t, page.HasMore)
	require.Empty(t, page.Items)
}

func TestMapSlicePreservesHasMore(t *testing.T) {
	page := MapSlice(Slice[int]{Items: []int{1, 2}, HasMore: true}, strconv.Itoa)
	require.True(t, page.HasMore)
	require.Equal(t, []string{"1", "2"}, page.Items)
}

func TestClampPageSize(t *testing.T) {
	require.Equal(t, DefaultPageSize, clampPageSize(0))
	require.Equal(t, DefaultPageSize, clampPageSize(-3))
	require.Equal(t, 7, clampPageSize(7))
	require.Equal(t, MaxPageSize, clampPageSize(MaxPageSize+1))
}
