// Package thermal provides board temperature sensors in the periph style and
// a virtual sensor that blends several of them into one reading.
package thermal

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

// Sensor is anything that can measure a temperature into a physic.Env.
type Sensor interface {
	Sense(env *physic.Env) error
	String() string
}

// MilliCelsius converts a periph temperature to integer milli-°C.
func MilliCelsius(t physic.Temperature) int64 {
	return int64((t - physic.ZeroCelsius) / physic.MilliCelsius)
}

// FromMilliCelsius is the inverse of MilliCelsius.
func FromMilliCelsius(mc int64) physic.Temperature {
	return physic.Temperature(mc)*physic.MilliCelsius + physic.ZeroCelsius
}

// Celsius rounds a periph temperature down to whole °C.
func Celsius(t physic.Temperature) int {
	mc := MilliCelsius(t)
	if mc < 0 && mc%1000 != 0 {
		return int(mc/1000) - 1
	}
	return int(mc / 1000)
}

// SysfsSensor reads a Linux thermal zone, which reports milli-°C as text.
type SysfsSensor struct {
	path string
}

// NewSysfsSensor returns a sensor for the given temp attribute, for example
// /sys/class/thermal/thermal_zone0/temp. A thermal zone directory works too.
func NewSysfsSensor(path string) *SysfsSensor {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, "temp")
	}
	return &SysfsSensor{path: path}
}

func (s *SysfsSensor) String() string {
	return "sysfs:" + s.path
}

func (s *SysfsSensor) Sense(env *physic.Env) error {
	logrus.Tracef("sense called on %s", s.path)

	b, err := os.ReadFile(s.path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read %s", s.path)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return pkgerrors.Wrapf(err, "invalid temperature %q in %s", strings.TrimSpace(string(b)), s.path)
	}
	env.Temperature = FromMilliCelsius(v)
	return nil
}

// Halt is a no-op. It makes SysfsSensor a periph conn.Resource.
func (s *SysfsSensor) Halt() error {
	return nil
}

// FixedSensor always reports the same temperature. Useful for tests and for
// boards that lack one of the configured zones.
type FixedSensor physic.Temperature

func (f FixedSensor) String() string {
	return "fixed:" + physic.Temperature(f).String()
}

func (f FixedSensor) Sense(env *physic.Env) error {
	env.Temperature = physic.Temperature(f)
	return nil
}
