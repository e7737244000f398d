package slices

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFilter(t *testing.T) {
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 }))
	assert.Equal(t, []int{}, Filter([]int(nil), func(int) bool { return true }))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Unique([]string{"b", "a", "b", "c", "a"}))
	assert.Equal(t, []int{}, Unique([]int{}))
}
