package power

import (
	"errors"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/thermal"
)

// SetTemperatureSensor makes Read take the battery temperature from sensor
// instead of the battery supply. nil goes back to the supply.
func (s *Supply) SetTemperatureSensor(sensor thermal.Sensor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempSensor = sensor
}

func (s *Supply) temperature() (int, error) {
	s.mu.Lock()
	sensor := s.tempSensor
	s.mu.Unlock()

	if sensor == nil {
		return s.GetBatteryTemperature()
	}
	var env physic.Env
	if err := sensor.Sense(&env); err != nil {
		return 0, err
	}
	return thermal.Celsius(env.Temperature), nil
}

// Read collects one tick's worth of measurements. A field that cannot be
// read keeps the value of the previous Read, and the returned error lists
// every failed field. Elapsed is left for the caller.
func (s *Supply) Read() (battery.Reading, error) {
	s.mu.Lock()
	r := s.last
	s.mu.Unlock()
	r.Elapsed = 0

	var failed []string
	var firstErr error
	check := func(field string, err error) bool {
		if err == nil {
			return true
		}
		logrus.WithError(err).WithField("field", field).Debug("failed to read power supply field")
		failed = append(failed, field)
		if firstErr == nil {
			firstErr = err
		}
		return false
	}

	if v, err := s.GetSOC(); check("soc", err) {
		r.SOC = v
	}
	if v, err := s.GetBatteryVoltage(); check("batVoltage", err) {
		r.BatVoltageMV = v
	}
	if v, err := s.temperature(); check("temperature", err) {
		r.TemperatureC = v
	}
	if v, err := s.GetZCV(); errors.Is(err, os.ErrNotExist) {
		r.ZCVMV = r.BatVoltageMV
	} else if check("zcv", err) {
		r.ZCVMV = v
	}
	if v, err := s.GetBatteryCurrent(); check("current", err) {
		r.ChargingCurrentMA = v
	}
	if v, err := s.IsBatteryPresent(); errors.Is(err, os.ErrNotExist) {
		r.BatteryPresent = true
	} else if check("batteryPresent", err) {
		r.BatteryPresent = v
	}
	if v, err := s.IsChargerOnline(); check("chargerPresent", err) {
		r.ChargerPresent = v
	}

	if r.ChargerPresent {
		if v, err := s.GetChargerVoltage(); check("chargerVoltage", err) {
			r.ChargerVoltageMV = v
		}
		if v, err := s.GetChargerType(); check("chargerType", err) {
			r.ChargerType = v
		}
		if v, err := s.GetChargerReport(); check("chargerReport", err) {
			r.ChargerPhase = v.Phase
			r.Full = v.Full
			r.Recharging = v.Recharging
		}
	} else {
		r.ChargerVoltageMV = 0
		r.ChargerType = battery.ChargerUnknown
		r.ChargerPhase = ""
		r.Full = false
		r.Recharging = false
	}

	s.mu.Lock()
	s.last = r
	s.mu.Unlock()

	if len(failed) > 0 {
		return r, pkgerrors.Wrapf(firstErr, "failed to read %s", strings.Join(failed, ", "))
	}
	return r, nil
}
