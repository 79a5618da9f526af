package ranking_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sales-analysis/src/common/ranking"
)

func largestFirst(a, b int) int {
	return b - a
}

func topOf(k int, values ...int) []int {
	top := ranking.NewTopK(k, largestFirst)
	for _, v := range values {
		top.Add(v)
	}
	return top.Result()
}

func TestTopK(t *testing.T) {
	require.Equal(t, []int{6}, topOf(1, 5, 1, 3, 6))
	require.Equal(t, []int{6, 5}, topOf(2, 5, 1, 3, 6))
	require.Equal(t, []int{9, 7, 6}, topOf(3, 5, 1, 3, 6, 7, 9))
}

func TestTopKWithDuplicatesAndNegatives(t *testing.T) {
	require.Equal(t, []int{9, 9, 7, 7}, topOf(4, 5, -2, 9, 7, 9, 3, -2, 6, 7))
}

func TestTopKFewerValuesThanK(t *testing.T) {
	require.Equal(t, []int{3, 1}, topOf(5, 1, 3))
	require.Empty(t, topOf(3))
}

func TestTopKInvalidK(t *testing.T) {
	require.Nil(t, ranking.NewTopK(0, largestFirst))
	require.Nil(t, ranking.NewTopK(-1, largestFirst))
}

func TestBest(t *testing.T) {
	best, found := ranking.Best([]int{4, 11, -3}, largestFirst)
	require.True(t, found)
	require.Equal(t, 11, best)

	_, found = ranking.Best([]int{}, largestFirst)
	require.False(t, found)
}

func TestBestBreaksTiesWithTotalOrder(t *testing.T) {
	rank := func(a, b store) int {
		if a.Profit != b.Profit {
			return b.Profit - a.Profit
		}
		return strings.Compare(a.Name, b.Name)
	}

	values := []store{{"storeC", 5}, {"storeB", 5}, {"storeA", 1}}
	best, found := ranking.Best(values, rank)
	require.True(t, found)
	require.Equal(t, "storeB", best.Name)
}
