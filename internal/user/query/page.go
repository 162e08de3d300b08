package query

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Window returns the [start, end) slice bounds of the page over n items.
func (p Page) Window(n int) (int, int) {
	p = p.Normalize()
	start := min(p.Offset, n)
	end := min(start+p.Limit, n)
	return start, end
}
