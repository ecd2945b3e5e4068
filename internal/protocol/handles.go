package protocol

// Handle identifies a resource in the display's table. A handle stays valid
// until its resource is destroyed; afterwards lookups fail even if the slot is
// reused.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h was never issued
func (h Handle) IsZero() bool { return h.generation == 0 }

type slot struct {
	generation uint32
	resource   *Resource
}

// handleTable owns every live resource. Slots are recycled through a free
// list and each reuse bumps the generation.
type handleTable struct {
	slots []slot
	free  []uint32
	live  int
	limit int // 0 means unbounded
}

func newHandleTable(limit int) *handleTable {
	return &handleTable{limit: limit}
}

func (t *handleTable) insert(r *Resource) (Handle, bool) {
	if t.limit > 0 && t.live >= t.limit {
		return Handle{}, false
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot{})
		idx = uint32(len(t.slots) - 1)
	}

	s := &t.slots[idx]
	s.generation++
	s.resource = r
	t.live++
	return Handle{index: idx, generation: s.generation}, true
}

func (t *handleTable) lookup(h Handle) (*Resource, bool) {
	if h.IsZero() || int(h.index) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.index]
	if s.generation != h.generation || s.resource == nil {
		return nil, false
	}
	return s.resource, true
}

func (t *handleTable) remove(h Handle) (*Resource, bool) {
	r, ok := t.lookup(h)
	if !ok {
		return nil, false
	}
	t.slots[h.index].resource = nil
	t.free = append(t.free, h.index)
	t.live--
	return r, true
}

func (t *handleTable) len() int { return t.live }
