package debugger

// Breakpoint is a single entry in the registry. A nonzero IgnoreCount makes
// it a watchpoint: that many hits are skipped before the next one pauses.
type Breakpoint struct {
	ID          int
	Address     uint16
	Enabled     bool
	IgnoreCount uint32
}

// Breakpoints owns the set of active breakpoints. Ids are assigned
// monotonically from 1 and are never reused for the lifetime of the
// registry, even after it empties out.
type Breakpoints struct {
	breaks []*Breakpoint
	nextID int
}

func newBreakpoints() *Breakpoints {
	return &Breakpoints{nextID: 1}
}

// Add registers an enabled breakpoint at the given address. Multiple
// breakpoints may share an address; each is an independent entry.
func (bp *Breakpoints) Add(address uint16) *Breakpoint {
	b := &Breakpoint{
		ID:      bp.nextID,
		Address: address,
		Enabled: true,
	}
	bp.nextID++
	bp.breaks = append(bp.breaks, b)
	return b
}

func (bp *Breakpoints) find(id int) (int, *Breakpoint) {
	for i, b := range bp.breaks {
		if b.ID == id {
			return i, b
		}
	}
	return -1, nil
}

// Delete removes a breakpoint. Its id is permanently gone.
func (bp *Breakpoints) Delete(id int) error {
	i, b := bp.find(id)
	if b == nil {
		return &ResolutionError{ID: id}
	}
	bp.breaks = append(bp.breaks[:i], bp.breaks[i+1:]...)
	return nil
}

// Enable makes a breakpoint pause-eligible again. Idempotent.
func (bp *Breakpoints) Enable(id int) error {
	_, b := bp.find(id)
	if b == nil {
		return &ResolutionError{ID: id}
	}
	b.Enabled = true
	return nil
}

// Disable keeps a breakpoint registered but never pausing. Idempotent.
func (bp *Breakpoints) Disable(id int) error {
	_, b := bp.find(id)
	if b == nil {
		return &ResolutionError{ID: id}
	}
	b.Enabled = false
	return nil
}

// Ignore sets the skip counter: the next count hits will not pause.
func (bp *Breakpoints) Ignore(id int, count uint32) error {
	_, b := bp.find(id)
	if b == nil {
		return &ResolutionError{ID: id}
	}
	b.IgnoreCount = count
	return nil
}

// Check evaluates every enabled breakpoint against the current program
// counter and returns the entries that pause execution. Entries with a
// pending ignore count burn one skip instead of pausing.
func (bp *Breakpoints) Check(pc uint16) []*Breakpoint {
	var hits []*Breakpoint
	for _, b := range bp.breaks {
		if !b.Enabled || b.Address != pc {
			continue
		}
		if b.IgnoreCount > 0 {
			b.IgnoreCount--
			continue
		}
		hits = append(hits, b)
	}
	return hits
}

// All returns the registered breakpoints in creation order.
func (bp *Breakpoints) All() []*Breakpoint {
	return bp.breaks
}

// Len returns the number of registered breakpoints.
func (bp *Breakpoints) Len() int {
	return len(bp.breaks)
}
