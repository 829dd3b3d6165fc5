// Package mock provides a scriptable TrackResolver for tests and offline runs.
package mock

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// AnyReference as a Hold/Release key affects every reference.
const AnyReference = ""

// Resolver is an in-memory TrackResolver.
// By default every reference resolves to AudioFor(reference).
//
// Thread-safety: This implementation is thread-safe.
type Resolver struct {
	mu sync.Mutex

	calls   []domain.ResolveRequest
	entered chan domain.ResolveRequest

	audio  map[string][]byte
	refuse map[string]bool
	errs   map[string]error
	panics map[string]bool
	holds  map[string]chan struct{}
}

// NewResolver creates a mock resolver.
func NewResolver() *Resolver {
	return &Resolver{
		entered: make(chan domain.ResolveRequest, 256),
		audio:   make(map[string][]byte),
		refuse:  make(map[string]bool),
		errs:    make(map[string]error),
		panics:  make(map[string]bool),
		holds:   make(map[string]chan struct{}),
	}
}

// AudioFor is the payload returned for reference when none was configured.
func AudioFor(reference string) []byte {
	return []byte("audio:" + reference)
}

// SetAudio configures the payload for a reference.
func (r *Resolver) SetAudio(reference string, audio []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audio[reference] = audio
}

// SetRefuse makes the resolver answer Success == false for reference.
func (r *Resolver) SetRefuse(reference string, refuse bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refuse[reference] = refuse
}

// SetError makes the resolver return err for reference (nil clears it).
func (r *Resolver) SetError(reference string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errs, reference)
		return
	}
	r.errs[reference] = err
}

// SetPanic makes the resolver panic for reference.
func (r *Resolver) SetPanic(reference string, p bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics[reference] = p
}

// Hold blocks future calls for reference (or AnyReference) until Release.
func (r *Resolver) Hold(reference string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holds[reference]; !ok {
		r.holds[reference] = make(chan struct{})
	}
}

// Release unblocks calls held for reference.
func (r *Resolver) Release(reference string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gate, ok := r.holds[reference]; ok {
		close(gate)
		delete(r.holds, reference)
	}
}

// ReleaseAll unblocks every held call.
func (r *Resolver) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ref, gate := range r.holds {
		close(gate)
		delete(r.holds, ref)
	}
}

// Entered delivers each request as soon as Resolve is entered, before any hold.
func (r *Resolver) Entered() <-chan domain.ResolveRequest {
	return r.entered
}

// Calls returns every request received so far.
func (r *Resolver) Calls() []domain.ResolveRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallCount returns the number of requests received so far.
func (r *Resolver) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// CallsFor returns how many requests targeted reference.
func (r *Resolver) CallsFor(reference string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Reference == reference {
			n++
		}
	}
	return n
}

// Resolve implements ports.TrackResolver.
func (r *Resolver) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolveResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, req)
	var gates []chan struct{}
	for _, key := range []string{AnyReference, req.Reference} {
		if gate, ok := r.holds[key]; ok {
			gates = append(gates, gate)
		}
	}
	shouldPanic := r.panics[req.Reference]
	err := r.errs[req.Reference]
	refuse := r.refuse[req.Reference]
	audio, ok := r.audio[req.Reference]
	r.mu.Unlock()

	select {
	case r.entered <- req:
	default:
	}

	for _, gate := range gates {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.ResolveResult{}, ctx.Err()
		}
	}

	if shouldPanic {
		panic(fmt.Sprintf("mock resolver panic for %s", req.Reference))
	}
	if err != nil {
		return domain.ResolveResult{}, err
	}
	if refuse {
		return domain.ResolveResult{Success: false}, nil
	}
	if !ok {
		audio = AudioFor(req.Reference)
	}
	return domain.ResolveResult{Success: true, Audio: slices.Clone(audio)}, nil
}

// Verify that Resolver implements the TrackResolver interface
var _ ports.TrackResolver = (*Resolver)(nil)
