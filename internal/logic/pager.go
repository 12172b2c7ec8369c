package logic

// PageCount is the number of rotating line-1 layouts.
const PageCount = 3

// Pager rotates the line-1 layout on a fixed period.
//
// It advances at most one page per call. If several periods passed since the
// last transition (a long tick), the pager still moves a single step and
// restarts its period from now; it never replays the missed transitions.
type Pager struct {
	period Millis
	state  PageState
}

// NewPager creates a pager on page 0 whose first transition comes one full
// period after start.
func NewPager(period, start Millis) *Pager {
	return &Pager{period: period, state: PageState{LastTransitionAt: start}}
}

// Advance moves to the next page if the period has elapsed and reports
// whether it did.
func (p *Pager) Advance(now Millis) bool {
	if !Elapsed(now, p.state.LastTransitionAt, p.period) {
		return false
	}
	p.state.Index = (p.state.Index + 1) % PageCount
	p.state.LastTransitionAt = now
	return true
}

// Index returns the current page.
func (p *Pager) Index() int { return p.state.Index }

// State returns a copy of the pager state.
func (p *Pager) State() PageState { return p.state }
