package retry

import (
	"sync"

	"github.com/randalmurphal/testchain/pkg/testchain/invocation"
)

type budget struct {
	id        invocation.Identity
	remaining int
}

// Budgets maps invocation identities to their remaining retry budget.
// Entries are created on first use and never removed.
type Budgets struct {
	mu      sync.Mutex
	buckets map[uint64][]*budget
	size    int
}

// NewBudgets creates an empty budget table.
func NewBudgets() *Budgets {
	return &Budgets{buckets: make(map[uint64][]*budget)}
}

// Take consumes one unit of id's budget, seeding it with seed on first use.
// It reports whether a unit was available and the budget left afterwards.
func (b *Budgets) Take(id invocation.Identity, seed int) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.lookup(id)
	if e == nil {
		if seed < 0 {
			seed = 0
		}
		e = &budget{id: id, remaining: seed}
		h := id.Hash()
		b.buckets[h] = append(b.buckets[h], e)
		b.size++
	}
	if e.remaining <= 0 {
		return false, 0
	}
	e.remaining--
	return true, e.remaining
}

// Remaining returns the budget left for id.
func (b *Budgets) Remaining(id invocation.Identity) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e := b.lookup(id); e != nil {
		return e.remaining, true
	}
	return 0, false
}

// Len returns the number of tracked identities.
func (b *Budgets) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// lookup must be called with b.mu held.
func (b *Budgets) lookup(id invocation.Identity) *budget {
	for _, e := range b.buckets[id.Hash()] {
		if e.id.Equal(id) {
			return e
		}
	}
	return nil
}
