package slices

// Filter returns the elements of slice for which fn returns true.
func Filter[T any](slice []T, fn func(T) bool) []T {
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if fn(v) {
			result = append(result, v)
		}
	}
	return result
}

// Unique returns the elements of slice with later duplicates removed, preserving order.
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	return Filter(slice, func(v T) bool {
		if seen[v] {
			return false
		}
		seen[v] = true
		return true
	})
}
