// Package pool implements the question selection state machine. Every board
// index is in exactly one of three sets at any time: unselected (face down),
// selected (revealed, at most two), or past (played). One selected index may
// additionally be active. Invalid transitions are silently ignored so that
// duplicate or racing admin clicks cannot corrupt the board.
package pool

// MaxSelectedQuestions is how many questions may be revealed at once.
const MaxSelectedQuestions = 2

// ActiveSource reports which board index is active, -1 for none. Backed by
// the room keeper.
type ActiveSource interface {
	ActiveIndex() int
}

// Observer receives the pool's transitions. It is subscribed once at
// construction; the session orchestrator translates these into broadcasts.
type Observer interface {
	SelectionChanged(selected, unselected []int)
	QuestionStarted(index int)
	QuestionCanceled()
	QuestionDone()
	QuestionEnded()
}

// Pool is the selection state machine over one game board.
type Pool struct {
	active     ActiveSource
	obs        Observer
	unselected []int
	selected   []int
	past       []int
}

// New creates a pool with all count indices unselected.
func New(count int, active ActiveSource, obs Observer) *Pool {
	unselected := make([]int, count)
	for i := range unselected {
		unselected[i] = i
	}
	return &Pool{
		active:     active,
		obs:        obs,
		unselected: unselected,
		selected:   []int{},
		past:       []int{},
	}
}

// VisibleQuestions returns the indices that are revealed or already played.
func (p *Pool) VisibleQuestions() []int {
	visible := make([]int, 0, len(p.past)+len(p.selected))
	visible = append(visible, p.past...)
	visible = append(visible, p.selected...)
	return visible
}

// SelectQuestion reveals the question at index, or starts it if it is
// already revealed. No-op while a question is active, when the reveal limit
// is reached, or when the index is already past.
func (p *Pool) SelectQuestion(index int) {
	if p.active.ActiveIndex() != -1 {
		return
	}
	if at := indexOf(p.unselected, index); at != -1 {
		if len(p.selected) < MaxSelectedQuestions {
			p.unselected = append(p.unselected[:at], p.unselected[at+1:]...)
			p.selected = append(p.selected, index)
			p.obs.SelectionChanged([]int{index}, nil)
		}
		return
	}
	if indexOf(p.selected, index) != -1 {
		p.obs.QuestionStarted(index)
	}
}

// StopQuestion finishes the active question: its index becomes past, any
// other revealed index is hidden again. Events fire in a fixed order;
// QuestionDone runs the scoring/turn bookkeeping before QuestionEnded tears
// the question down.
func (p *Pool) StopQuestion() {
	active := p.active.ActiveIndex()
	if active == -1 {
		return
	}
	at := indexOf(p.selected, active)
	if at == -1 {
		return
	}
	p.selected = append(p.selected[:at], p.selected[at+1:]...)
	p.past = append(p.past, active)

	hidden := p.selected
	p.unselected = append(p.unselected, hidden...)
	p.selected = []int{}

	p.obs.SelectionChanged(nil, hidden)
	p.obs.QuestionDone()
	p.obs.QuestionEnded()
}

// CancelQuestion rolls back the active question, or hides the last revealed
// question when none is active. The canceled index stays revealed so the
// question can be restarted; the scoring rollback happens on
// QuestionCanceled, before QuestionEnded fires.
func (p *Pool) CancelQuestion() {
	if p.active.ActiveIndex() != -1 {
		p.obs.QuestionCanceled()
		p.obs.QuestionEnded()
		return
	}
	p.CancelLastRevealed()
}

// CancelLastRevealed hides the most recently revealed question, if any.
func (p *Pool) CancelLastRevealed() {
	if len(p.selected) == 0 {
		return
	}
	last := p.selected[len(p.selected)-1]
	p.selected = p.selected[:len(p.selected)-1]
	p.unselected = append(p.unselected, last)
	p.obs.SelectionChanged(nil, []int{last})
}

// AllQuestionsAnswered reports whether every question has been played.
func (p *Pool) AllQuestionsAnswered() bool {
	return len(p.selected) == 0 && len(p.unselected) == 0
}

// CanDiscard reports whether the board is untouched: nothing revealed,
// nothing played.
func (p *Pool) CanDiscard() bool {
	return len(p.selected) == 0 && len(p.past) == 0
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
