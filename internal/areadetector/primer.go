package areadetector

import (
	"context"
	"time"

	"github.com/BCDA-APS/beamtools/internal/device"
)

// Priming timings. Hooks for the tests; production code never changes them.
var (
	// primeThrottle is the pause between consecutive priming writes.
	primeThrottle = 100 * time.Millisecond

	// primeSettle is the wait after the last write for the single frame to
	// propagate through the plugin chain and land in the plugin's metadata.
	primeSettle = 2 * time.Second
)

// Prime pushes one frame through the plugin so its array metadata matches
// the camera. No-op when the plugin is already primed.
//
// The camera is switched to a single software-triggered short exposure,
// one frame is acquired, and every touched PV is restored to its prior
// value in reverse write order. Acquire is written last so the detector
// only starts once the chain is configured.
func (p *FilePlugin) Prime(ctx context.Context) error {
	primed, err := p.Primed(ctx)
	if err != nil {
		return err
	}
	if primed {
		p.logger.Debug("plugin already primed", "plugin", p.name)
		return nil
	}

	p.logger.Info("priming plugin", "plugin", p.name)

	var seq device.StageList
	seq.Append(p.EnableCallbacks, 1)
	seq.Append(p.cam.ArrayCallbacks, 1)
	seq.Append(p.cam.ImageMode, 0)   // Single
	seq.Append(p.cam.TriggerMode, 0) // Internal
	seq.Append(p.cam.AcquireTime, 1)
	seq.Append(p.cam.AcquirePeriod, 1)
	seq.Append(p.cam.Acquire, 1)
	seq.EnsureLast("acquire")

	restorer, err := seq.Apply(ctx, primeThrottle)
	if err != nil {
		return err
	}

	if err := sleepCtx(ctx, primeSettle); err != nil {
		_ = restorer.Restore(context.WithoutCancel(ctx))
		return err
	}

	return restorer.Restore(ctx)
}

// sleepCtx pauses for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
