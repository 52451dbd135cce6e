package thermal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

type stepSensor struct {
	name  string
	temps []int64 // milli-°C, one per Sense call
	i     int
	err   error
}

func (s *stepSensor) String() string { return s.name }

func (s *stepSensor) Sense(env *physic.Env) error {
	if s.err != nil {
		return s.err
	}
	t := s.temps[s.i]
	if s.i < len(s.temps)-1 {
		s.i++
	}
	env.Temperature = FromMilliCelsius(t)
	return nil
}

func TestMilliCelsiusRoundTrip(t *testing.T) {
	for _, mc := range []int64{-20500, 0, 25000, 61234} {
		assert.Equal(t, mc, MilliCelsius(FromMilliCelsius(mc)))
	}
	assert.Equal(t, 25, Celsius(FromMilliCelsius(25999)))
	assert.Equal(t, -3, Celsius(FromMilliCelsius(-2500)))
}

func TestVirtualSensor_Smoothing(t *testing.T) {
	s := &stepSensor{name: "a", temps: []int64{40000, 50000, 50000}}
	v, err := NewVirtualSensor(Source{Sensor: s, Alpha: 500, Offset: 0, Weight: 1000})
	require.NoError(t, err)

	var env physic.Env
	require.NoError(t, v.Sense(&env))
	assert.Equal(t, int64(40000), MilliCelsius(env.Temperature))

	require.NoError(t, v.Sense(&env))
	assert.Equal(t, int64(45000), MilliCelsius(env.Temperature))

	require.NoError(t, v.Sense(&env))
	assert.Equal(t, int64(47500), MilliCelsius(env.Temperature))
}

func TestVirtualSensor_WeightsAndOffsets(t *testing.T) {
	a := &stepSensor{name: "cpu", temps: []int64{60000}}
	b := &stepSensor{name: "pmic", temps: []int64{40000}}
	v, err := NewVirtualSensor(
		Source{Sensor: a, Alpha: 1000, Offset: 10000, Weight: 300},
		Source{Sensor: b, Alpha: 1000, Offset: 0, Weight: 700},
	)
	require.NoError(t, err)

	var env physic.Env
	require.NoError(t, v.Sense(&env))
	// 0.3*(60-10) + 0.7*40 = 43 °C
	assert.Equal(t, int64(43000), MilliCelsius(env.Temperature))

	st := v.Status()
	require.Len(t, st.Sources, 2)
	assert.Equal(t, int64(60000), st.Sources[0].RawMC)
	assert.Equal(t, int64(50000), st.Sources[0].FilteredMC)
	assert.Equal(t, int64(43000), st.MilliCelsius)
}

func TestVirtualSensor_FailingSource(t *testing.T) {
	good := &stepSensor{name: "good", temps: []int64{30000}}
	bad := &stepSensor{name: "bad", err: errors.New("i/o error")}
	v, err := NewVirtualSensor(
		Source{Sensor: good, Alpha: 1000, Weight: 1000},
		Source{Sensor: bad, Alpha: 1000, Weight: 1000},
	)
	require.NoError(t, err)

	var env physic.Env
	require.NoError(t, v.Sense(&env))
	assert.Equal(t, int64(30000), MilliCelsius(env.Temperature))
	assert.Equal(t, "i/o error", v.Status().Sources[1].Error)

	only, err := NewVirtualSensor(Source{Sensor: bad, Alpha: 1000, Weight: 1000})
	require.NoError(t, err)
	assert.Error(t, only.Sense(&env))
}

func TestNewVirtualSensor_Validation(t *testing.T) {
	_, err := NewVirtualSensor()
	assert.Error(t, err)

	_, err = NewVirtualSensor(Source{})
	assert.Error(t, err)

	_, err = NewVirtualSensor(Source{Sensor: FixedSensor(physic.ZeroCelsius), Alpha: 1001})
	assert.Error(t, err)
}

func TestSysfsSensor(t *testing.T) {
	dir := t.TempDir()
	zone := filepath.Join(dir, "thermal_zone0")
	require.NoError(t, os.Mkdir(zone, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(zone, "temp"), []byte("36500\n"), 0o644))

	s := NewSysfsSensor(zone)
	var env physic.Env
	require.NoError(t, s.Sense(&env))
	assert.Equal(t, int64(36500), MilliCelsius(env.Temperature))

	require.NoError(t, os.WriteFile(filepath.Join(zone, "temp"), []byte("garbage"), 0o644))
	assert.Error(t, s.Sense(&env))

	assert.Error(t, NewSysfsSensor(filepath.Join(dir, "missing")).Sense(&env))
}
