package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModIsEuclidean(t *testing.T) {
	cases := []struct {
		n, m, want int
	}{
		{0, 12, 0},
		{11, 12, 11},
		{12, 12, 0},
		{-1, 12, 11},
		{-12, 12, 0},
		{-13, 12, 11},
		{-1, 7, 6},
		{9, 7, 2},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d mod %d", c.n, c.m), func(t *testing.T) {
			assert.Equal(t, c.want, Mod(c.n, c.m))
		})
	}
}

func TestFloorDivPairsWithMod(t *testing.T) {
	assert := assert.New(t)
	for n := -30; n <= 30; n++ {
		q, r := FloorDiv(n, 7), Mod(n, 7)
		assert.Equal(n, q*7+r)
		assert.GreaterOrEqual(r, 0)
	}
	assert.Equal(-1, FloorDiv(-1, 7))
	assert.Equal(1, FloorDiv(9, 7))
	assert.Equal(int8(-2), FloorDiv(int8(-8), int8(7)))
}

func TestSumAndMax(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(60), Sum([]uint32{12, 24, 24}))
	assert.Equal(uint64(0), Sum([]uint8{}))
	assert.Equal(5, Max(3, 5))
	assert.Equal(uint64(9), Max(uint64(9), uint64(2)))
}

func TestGetSortedKeys(t *testing.T) {
	m := map[uint32]string{3: "c", 1: "a", 2: "b"}
	assert.Equal(t, []uint32{1, 2, 3}, GetSortedKeys(m))
}
