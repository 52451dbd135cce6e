package thermal

import (
	"fmt"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

// DMF is the fixed-point scale of Alpha and Weight.
const DMF = 1000

// Source is one input of a VirtualSensor.
type Source struct {
	Sensor Sensor
	// Alpha is the smoothing factor out of DMF. DMF means no smoothing.
	Alpha int64
	// Offset in milli-°C is subtracted from every sample.
	Offset int64
	// Weight out of DMF is this source's share of the result.
	Weight int64
}

// SourceStatus is the last known state of one source.
type SourceStatus struct {
	Name       string `json:"name"`
	RawMC      int64  `json:"rawMilliCelsius"`
	FilteredMC int64  `json:"filteredMilliCelsius"`
	Weight     int64  `json:"weight"`
	Error      string `json:"error,omitempty"`
}

// Status is what the virtual sensor computed last.
type Status struct {
	MilliCelsius int64          `json:"milliCelsius"`
	Sources      []SourceStatus `json:"sources"`
}

// VirtualSensor computes a weighted sum of exponentially smoothed sources.
// It is safe for concurrent use.
type VirtualSensor struct {
	mu       sync.Mutex
	sources  []Source
	filtered []int64
	primed   []bool
	status   Status
}

// NewVirtualSensor validates the sources and returns a sensor over them.
func NewVirtualSensor(sources ...Source) (*VirtualSensor, error) {
	if len(sources) == 0 {
		return nil, pkgerrors.New("virtual sensor needs at least one source")
	}
	for i, s := range sources {
		if s.Sensor == nil {
			return nil, pkgerrors.Errorf("source %d has no sensor", i)
		}
		if s.Alpha < 0 || s.Alpha > DMF {
			return nil, pkgerrors.Errorf("source %d (%s): alpha %d out of range [0,%d]", i, s.Sensor, s.Alpha, DMF)
		}
	}

	v := &VirtualSensor{
		sources:  append([]Source(nil), sources...),
		filtered: make([]int64, len(sources)),
		primed:   make([]bool, len(sources)),
	}
	v.status.Sources = make([]SourceStatus, len(sources))
	for i, s := range sources {
		v.status.Sources[i] = SourceStatus{Name: s.Sensor.String(), Weight: s.Weight}
	}
	return v, nil
}

func (v *VirtualSensor) String() string {
	names := make([]string, 0, len(v.sources))
	for _, s := range v.sources {
		names = append(names, s.Sensor.String())
	}
	return fmt.Sprintf("virtual(%s)", strings.Join(names, ","))
}

// Sense samples every source and stores the composite in env.Temperature.
// A source that fails keeps its previous filtered value. An error is only
// returned when no source has ever produced a sample.
func (v *VirtualSensor) Sense(env *physic.Env) error {
	mc, err := v.sample()
	if err != nil {
		return err
	}
	env.Temperature = FromMilliCelsius(mc)
	return nil
}

// Halt is a no-op.
func (v *VirtualSensor) Halt() error {
	return nil
}

// Status returns a copy of the last computation.
func (v *VirtualSensor) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := v.status
	st.Sources = append([]SourceStatus(nil), v.status.Sources...)
	return st
}

func (v *VirtualSensor) sample() (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	anyPrimed := false
	var sum int64
	for i, s := range v.sources {
		st := &v.status.Sources[i]

		var env physic.Env
		if err := s.Sensor.Sense(&env); err != nil {
			logrus.WithError(err).WithField("sensor", s.Sensor.String()).Warn("failed to sense temperature")
			st.Error = err.Error()
		} else {
			st.Error = ""
			raw := MilliCelsius(env.Temperature)
			st.RawMC = raw
			t := raw - s.Offset
			if !v.primed[i] {
				v.filtered[i] = t
				v.primed[i] = true
			} else {
				v.filtered[i] = (s.Alpha*t + (DMF-s.Alpha)*v.filtered[i]) / DMF
			}
		}

		if v.primed[i] {
			anyPrimed = true
			st.FilteredMC = v.filtered[i]
			sum += s.Weight * v.filtered[i]
		}
	}

	if !anyPrimed {
		return 0, pkgerrors.Errorf("no temperature from any source of %s", v.String())
	}

	v.status.MilliCelsius = sum / DMF
	return v.status.MilliCelsius, nil
}
