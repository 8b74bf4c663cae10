package chatroom

// Slice is a page of results plus a has-more flag. It deliberately carries no
// total count: the store cannot provide one cheaply at scale.
type Slice[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// CutPage turns a lookahead query result into a Slice. Callers fetch
// pageSize+1 rows; the extra row only proves there is more and is trimmed.
func CutPage[T any](rows []T, pageSize int) Slice[T] {
	if len(rows) > pageSize {
		return Slice[T]{Items: rows[:pageSize], HasMore: true}
	}
	return Slice[T]{Items: rows, HasMore: false}
}

// MapSlice converts the items of a Slice, preserving the has-more flag.
func MapSlice[T, U any](s Slice[T], fn func(T) U) Slice[U] {
	items := make([]U, len(s.Items))
	for i, item := range s.Items {
		items[i] = fn(item)
	}
	return Slice[U]{Items: items, HasMore: s.HasMore}
}
