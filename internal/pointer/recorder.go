package pointer

import "sync"

// Call is one recorded Injector call.
type Call struct {
	Op     Op
	X, Y   int
	Amount int
}

// Recorder is an Injector that records calls instead of touching the OS.
// Errors configured with FailOn are returned without recording the call.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	failOn map[Op]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{failOn: make(map[Op]error)}
}

// FailOn makes every subsequent call to op return err. A nil err clears it.
func (r *Recorder) FailOn(op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failOn, op)
		return
	}
	r.failOn[op] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent call of op.
func (r *Recorder) Last(op Op) (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].Op == op {
			return r.calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[c.Op]; err != nil {
		return err
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *Recorder) MoveTo(x, y int) error   { return r.record(Call{Op: OpMove, X: x, Y: y}) }
func (r *Recorder) ButtonDown() error       { return r.record(Call{Op: OpButtonDown}) }
func (r *Recorder) ButtonUp() error         { return r.record(Call{Op: OpButtonUp}) }
func (r *Recorder) LeftClick() error        { return r.record(Call{Op: OpLeftClick}) }
func (r *Recorder) RightClick() error       { return r.record(Call{Op: OpRightClick}) }
func (r *Recorder) Scroll(amount int) error { return r.record(Call{Op: OpScroll, Amount: amount}) }
