package device

import (
	"context"
	"errors"
	"time"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// Staging lifecycle errors.
var (
	// ErrAlreadyStaged is returned when Stage is called on a staged device.
	// Re-staging without an intervening Unstage would re-run stage-time
	// validation against live hardware and corrupt the datum counter.
	ErrAlreadyStaged = errors.New("device: already staged")

	// ErrNotStaged is returned when Unstage is called on an unstaged device.
	ErrNotStaged = errors.New("device: not staged")
)

// StageState tracks a device's position in the staging lifecycle.
//
// Transitions: Unstaged -> Staging -> Staged -> Unstaging -> Unstaged.
// No transition skips validation.
type StageState int

const (
	Unstaged StageState = iota
	Staging
	Staged
	Unstaging
)

// String returns the lowercase state name.
func (s StageState) String() string {
	switch s {
	case Staging:
		return "staging"
	case Staged:
		return "staged"
	case Unstaging:
		return "unstaging"
	default:
		return "unstaged"
	}
}

// Stager is the staging lifecycle shared by devices and detector plugins.
type Stager interface {
	Stage(ctx context.Context) error
	Unstage(ctx context.Context) error
}

// StagePair is one (signal, value) entry in a staging sequence.
type StagePair struct {
	Sig   *epics.Signal
	Value any
}

// StageList is an ordered sequence of PV writes applied at stage time.
//
// Order is significant both ways: Apply writes forward, and the returned
// Restorer writes the snapshot back in reverse. Acquisition-starting
// entries ("capture", "acquire") must sort last in the forward pass; use
// EnsureLast to enforce that.
type StageList struct {
	pairs []StagePair
}

// Append adds a pair at the end of the sequence.
func (l *StageList) Append(sig *epics.Signal, value any) {
	l.pairs = append(l.pairs, StagePair{Sig: sig, Value: value})
}

// Set replaces the value for a signal already in the sequence, or appends
// the pair if the signal is absent. Position is preserved on replace.
func (l *StageList) Set(sig *epics.Signal, value any) {
	for i := range l.pairs {
		if l.pairs[i].Sig.PV() == sig.PV() {
			l.pairs[i].Value = value
			return
		}
	}
	l.Append(sig, value)
}

// EnsureLast moves the entry for the named signal to the end of the
// sequence. No-op if the signal is not present.
func (l *StageList) EnsureLast(name string) {
	for i := range l.pairs {
		if l.pairs[i].Sig.Name() == name {
			p := l.pairs[i]
			l.pairs = append(l.pairs[:i], l.pairs[i+1:]...)
			l.pairs = append(l.pairs, p)
			return
		}
	}
}

// Len returns the number of entries.
func (l *StageList) Len() int { return len(l.pairs) }

// Pairs returns a copy of the sequence.
func (l *StageList) Pairs() []StagePair {
	out := make([]StagePair, len(l.pairs))
	copy(out, l.pairs)
	return out
}

// savedValue is one snapshot entry held by a Restorer.
type savedValue struct {
	sig  *epics.Signal
	prev any
}

// Restorer holds the pre-stage snapshot of a StageList and writes it back
// in reverse order. It is the scoped-acquisition guard for the staging and
// priming sequences: acquire with Apply, release with Restore.
type Restorer struct {
	saved    []savedValue
	throttle time.Duration
	done     bool
}

// Apply snapshots the current value of every signal in the list, then
// writes the staged values in order. throttle inserts a pause between
// consecutive writes so a busy IOC is not flooded.
//
// On a write failure the signals already written are restored (reverse
// order) before the error is returned, so a failed Apply leaves the IOC
// as it was found.
func (l *StageList) Apply(ctx context.Context, throttle time.Duration) (*Restorer, error) {
	r := &Restorer{throttle: throttle}

	// Snapshot first so a mid-sequence failure can roll back.
	for _, p := range l.pairs {
		v, err := p.Sig.Get(ctx)
		if err != nil {
			return nil, err
		}
		r.saved = append(r.saved, savedValue{sig: p.Sig, prev: v.Raw()})
	}

	for i, p := range l.pairs {
		if i > 0 {
			if err := sleepCtx(ctx, throttle); err != nil {
				r.partialRestore(i)
				return nil, err
			}
		}
		if err := p.Sig.PutWait(ctx, p.Value); err != nil {
			r.partialRestore(i)
			return nil, err
		}
	}

	return r, nil
}

// Restore writes the snapshot back in reverse order, throttled like the
// forward pass. Restore is idempotent; the second and later calls return
// nil without touching the IOC.
func (r *Restorer) Restore(ctx context.Context) error {
	if r.done {
		return nil
	}
	r.done = true

	for i := len(r.saved) - 1; i >= 0; i-- {
		if i < len(r.saved)-1 {
			if err := sleepCtx(ctx, r.throttle); err != nil {
				return err
			}
		}
		if err := r.saved[i].sig.PutWait(ctx, r.saved[i].prev); err != nil {
			return err
		}
	}
	return nil
}

// partialRestore undoes writes 0..n-1 after a failed Apply. Best effort:
// the Apply error is the one the caller sees.
func (r *Restorer) partialRestore(n int) {
	r.done = true
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := n - 1; i >= 0; i-- {
		_ = r.saved[i].sig.PutWait(ctx, r.saved[i].prev)
	}
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
