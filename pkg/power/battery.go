package power

import (
	"github.com/sirupsen/logrus"
)

// IsBatteryPresent returns whether a battery is attached.
func (s *Supply) IsBatteryPresent() (bool, error) {
	logrus.Tracef("IsBatteryPresent called")

	return s.readBool(s.batteryKey(AttrPresent))
}

// GetBatteryVoltage returns the battery voltage in mV.
func (s *Supply) GetBatteryVoltage() (int, error) {
	logrus.Tracef("GetBatteryVoltage called")

	uv, err := s.readInt(s.batteryKey(AttrVoltageNow))
	if err != nil {
		return 0, err
	}
	return int(uv / 1000), nil
}

// GetZCV returns the open-circuit voltage in mV.
func (s *Supply) GetZCV() (int, error) {
	logrus.Tracef("GetZCV called")

	uv, err := s.readInt(s.batteryKey(AttrVoltageOCV))
	if err != nil {
		return 0, err
	}
	return int(uv / 1000), nil
}

// GetBatteryCurrent returns the charging current in mA. Negative means
// the battery is discharging.
func (s *Supply) GetBatteryCurrent() (int, error) {
	logrus.Tracef("GetBatteryCurrent called")

	ua, err := s.readInt(s.batteryKey(AttrCurrentNow))
	if err != nil {
		return 0, err
	}
	return int(ua / 1000), nil
}

// GetBatteryTemperature returns the battery temperature in whole °C.
func (s *Supply) GetBatteryTemperature() (int, error) {
	logrus.Tracef("GetBatteryTemperature called")

	dc, err := s.readInt(s.batteryKey(AttrTemp))
	if err != nil {
		return 0, err
	}
	// tenths of °C, rounded toward negative infinity
	if dc < 0 && dc%10 != 0 {
		return int(dc/10) - 1, nil
	}
	return int(dc / 10), nil
}
