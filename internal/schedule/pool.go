package schedule

import (
	"fmt"
	"time"

	"git.lost.host/meutraa/autochart/internal/game"
)

const DefaultPoolSize = 50

// ActiveNote is a pooled runtime instance of a chart note. Only the
// scheduler hands these out and takes them back.
type ActiveNote struct {
	Note  *game.Note // Points into the loaded chart, never copied
	Index int        // Position of Note in the chart

	Active bool
	Judged bool

	// Position is the distance above the judgement line, in fall speed units.
	Position float64

	slot int
}

func (n *ActiveNote) Lane() int {
	return n.Note.Lane
}

func (n *ActiveNote) Target() time.Duration {
	return n.Note.Target()
}

func (n *ActiveNote) Slot() int {
	return n.slot
}

// Pool hands out note slots, growing past its initial size on demand. A
// positive Limit caps growth.
type Pool struct {
	Limit int

	slots []*ActiveNote
	free  []int
	inUse []bool
}

func NewPool(size int) *Pool {
	p := &Pool{}
	p.grow(size)
	return p
}

func (p *Pool) grow(n int) {
	for i := 0; i < n; i++ {
		slot := len(p.slots)
		p.slots = append(p.slots, &ActiveNote{slot: slot})
		p.inUse = append(p.inUse, false)
		p.free = append(p.free, slot)
	}
}

// Get takes a free slot, growing the pool when every slot is in use.
func (p *Pool) Get() (*ActiveNote, error) {
	if len(p.free) == 0 {
		if p.Limit > 0 && len(p.slots) >= p.Limit {
			return nil, fmt.Errorf("%w: %d notes in use", game.ErrPoolExhausted, len(p.slots))
		}
		p.grow(1)
	}
	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[slot] = true
	return p.slots[slot], nil
}

// Put returns a slot. Returning a slot that is already free is a programming
// error.
func (p *Pool) Put(n *ActiveNote) {
	if n.slot >= len(p.slots) || p.slots[n.slot] != n {
		panic("schedule: note does not belong to this pool")
	}
	if !p.inUse[n.slot] {
		panic(fmt.Sprintf("schedule: slot %d returned twice", n.slot))
	}
	*n = ActiveNote{slot: n.slot}
	p.inUse[n.slot] = false
	p.free = append(p.free, n.slot)
}

func (p *Pool) InUse(n *ActiveNote) bool {
	return p.inUse[n.slot]
}

// Capacity is the number of slots allocated so far.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

func (p *Pool) Free() int {
	return len(p.free)
}
