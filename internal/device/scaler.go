package device

import (
	"context"
	"fmt"

	"github.com/BCDA-APS/beamtools/internal/epics"
)

// Scaler wraps the EPICS scaler record.
//
// Channels are discovered from the record's .NM<i> name fields at
// construction time by the caller and passed in; counting uses put
// completion on .CNT, which the record holds busy until the preset time
// elapses.
type Scaler struct {
	Device

	count      *epics.Signal // .CNT (1 = count, completion on done)
	presetTime *epics.Signal // .TP

	channels []scalerChannel
}

type scalerChannel struct {
	name  string
	value *epics.Signal // .S<i>
}

// NewScaler creates a scaler for the given record prefix. channelNames
// maps 1-based channel numbers to detector names; unnamed channels are
// skipped.
func NewScaler(conn epics.Conn, name, prefix string, channelNames map[int]string, labels ...string) *Scaler {
	s := &Scaler{
		Device:     newDevice(name, prefix, labels...),
		count:      epics.NewSignal(conn, "count", epics.Join(prefix, ".CNT")),
		presetTime: epics.NewSignal(conn, "preset_time", epics.Join(prefix, ".TP")),
	}
	for i := 1; i <= 32; i++ {
		chName, ok := channelNames[i]
		if !ok || chName == "" {
			continue
		}
		s.channels = append(s.channels, scalerChannel{
			name:  chName,
			value: epics.NewSignal(conn, chName, epics.Join(prefix, fmt.Sprintf(".S%d", i))),
		})
	}
	return s
}

// Kind implements Reader.
func (s *Scaler) Kind() string { return "scaler" }

// SetPresetTime writes the counting time in seconds.
func (s *Scaler) SetPresetTime(ctx context.Context, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("device: preset time must be positive, got %g", seconds)
	}
	return s.presetTime.PutWait(ctx, seconds)
}

// Count starts a count and blocks until the record reports completion,
// then returns the per-channel counts keyed by channel name.
func (s *Scaler) Count(ctx context.Context) (map[string]float64, error) {
	s.logger.Debug("scaler count", "device", s.Name())

	if err := s.count.PutWait(ctx, 1); err != nil {
		return nil, err
	}
	return s.ReadChannels(ctx)
}

// ReadChannels reads the current channel values without counting.
func (s *Scaler) ReadChannels(ctx context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(s.channels))
	for _, ch := range s.channels {
		v, err := ch.value.GetFloat(ctx)
		if err != nil {
			return nil, err
		}
		out[ch.name] = v
	}
	return out, nil
}

// Read implements Reader.
func (s *Scaler) Read(ctx context.Context) (map[string]any, error) {
	counts, err := s.ReadChannels(ctx)
	if err != nil {
		return nil, err
	}
	tp, err := s.presetTime.GetFloat(ctx)
	if err != nil {
		return nil, err
	}
	state := map[string]any{"preset_time": tp}
	for k, v := range counts {
		state[k] = v
	}
	return state, nil
}
