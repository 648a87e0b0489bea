package request

// cacheState tells a value that was never computed apart from one that was
// computed and found absent.
type cacheState uint8

const (
	uncomputed cacheState = iota
	present
	absent
)

// memo holds a value computed at most once. An absent result is cached too.
type memo[T any] struct {
	state cacheState
	value T
}

func (m *memo[T]) get(compute func() (T, bool)) (T, bool) {
	if m.state == uncomputed {
		v, ok := compute()
		if ok {
			m.value, m.state = v, present
		} else {
			m.state = absent
		}
	}
	return m.value, m.state == present
}
