// Package shuffle implements the next/previous track policies for the three
// shuffle modes. The engine is pure: it reads a State and never mutates it.
package shuffle

import (
	"math/rand/v2"
	"sync"

	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// State is the slice of session state the policies look at.
type State struct {
	// Length is the playlist length
	Length int

	// Current is the current index, -1 if nothing is selected
	Current int

	Mode domain.ShuffleMode

	// Played holds the indices already played in this no-repeat cycle
	Played map[int]struct{}

	// Order is the shuffle permutation (empty when unshuffled)
	Order []int
}

// Engine computes navigation targets. It owns its random source so callers
// can make selections reproducible.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine drawing from rng. A nil rng gets a randomly seeded PCG.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{rng: rng}
}

// NewSeededEngine returns an engine with a deterministic random source.
func NewSeededEngine(seed uint64) *Engine {
	return NewEngine(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Next returns the index to play after st.Current.
// The boolean is false when the playlist is empty or a no-repeat cycle is exhausted.
func (e *Engine) Next(st State) (int, bool) {
	if st.Length <= 0 {
		return -1, false
	}

	switch st.Mode {
	case domain.ShuffleNoRepeat:
		available := Available(st)
		if len(available) == 0 {
			return -1, false
		}
		if next, ok := lo.Find(st.Order, func(i int) bool { return lo.Contains(available, i) }); ok {
			return next, true
		}
		return available[e.intN(len(available))], true

	case domain.ShuffleRepeat:
		if len(st.Order) > 0 {
			pos := lo.IndexOf(st.Order, st.Current)
			if pos < 0 {
				return st.Order[0], true
			}
			return st.Order[(pos+1)%len(st.Order)], true
		}
		return e.randomOther(st.Length, st.Current), true

	default:
		if st.Current < 0 {
			return 0, true
		}
		return (st.Current + 1) % st.Length, true
	}
}

// Prev returns the index to play before st.Current. It is never random.
// With no current index it starts from the end of the playlist, mirroring
// Next starting from 0.
func (e *Engine) Prev(st State) (int, bool) {
	if st.Length <= 0 {
		return -1, false
	}

	if st.Mode.IsShuffled() && len(st.Order) > 0 {
		pos := lo.IndexOf(st.Order, st.Current)
		if pos < 0 {
			return st.Order[len(st.Order)-1], true
		}
		return st.Order[(pos-1+len(st.Order))%len(st.Order)], true
	}

	if st.Current < 0 {
		return st.Length - 1, true
	}
	return (st.Current - 1 + st.Length) % st.Length, true
}

// Order returns a permutation of 0..length-1 that starts with start, followed by
// a Fisher–Yates shuffle of the remaining indices. A start outside the range
// shuffles every index.
func (e *Engine) Order(length, start int) []int {
	if length <= 0 {
		return nil
	}

	all := lo.Range(length)
	if start < 0 || start >= length {
		e.shuffle(all)
		return all
	}

	rest := lo.Without(all, start)
	e.shuffle(rest)
	return append([]int{start}, rest...)
}

// Restart begins a new no-repeat cycle after exhaustion. It picks a uniformly
// random start different from current (when there is a choice) and an order
// beginning with it.
func (e *Engine) Restart(length, current int) (start int, order []int) {
	if length <= 0 {
		return -1, nil
	}
	start = e.randomOther(length, current)
	return start, e.Order(length, start)
}

// Available returns the indices a no-repeat cycle may still visit, ascending.
func Available(st State) []int {
	return lo.Filter(lo.Range(st.Length), func(i int, _ int) bool {
		if i == st.Current {
			return false
		}
		_, played := st.Played[i]
		return !played
	})
}

// IsPermutation reports whether order contains each of 0..length-1 exactly once.
func IsPermutation(order []int, length int) bool {
	if len(order) != length {
		return false
	}
	seen := make([]bool, length)
	for _, i := range order {
		if i < 0 || i >= length || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

func (e *Engine) randomOther(length, current int) int {
	if length == 1 {
		return 0
	}
	if current < 0 || current >= length {
		return e.intN(length)
	}
	// draw from length-1 slots and skip over current
	n := e.intN(length - 1)
	if n >= current {
		n++
	}
	return n
}

func (e *Engine) intN(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(n)
}

func (e *Engine) shuffle(s []int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
