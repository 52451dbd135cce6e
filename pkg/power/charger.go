package power

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
)

// IsChargerOnline returns whether a charger is plugged in.
func (s *Supply) IsChargerOnline() (bool, error) {
	logrus.Tracef("IsChargerOnline called")

	ret, err := s.readBool(s.chargerKey(AttrOnline))
	if err != nil {
		return false, err
	}
	logrus.Tracef("IsChargerOnline returned %t", ret)

	return ret, nil
}

// GetChargerVoltage returns the charger input voltage in mV. Chargers that do
// not measure their input report the nominal USB voltage.
func (s *Supply) GetChargerVoltage() (int, error) {
	logrus.Tracef("GetChargerVoltage called")

	uv, err := s.readInt(s.chargerKey(AttrVoltageNow))
	if errors.Is(err, os.ErrNotExist) {
		return defaultChargerVoltage, nil
	}
	if err != nil {
		return 0, err
	}
	return int(uv / 1000), nil
}

// GetChargerType maps usb_type to a charger type.
func (s *Supply) GetChargerType() (battery.ChargerType, error) {
	logrus.Tracef("GetChargerType called")

	v, err := s.ReadAttr(s.chargerKey(AttrUSBType))
	if errors.Is(err, os.ErrNotExist) {
		return battery.ChargerStandard, nil
	}
	if err != nil {
		return battery.ChargerUnknown, err
	}

	ret := chargerTypeOf(selected(v))
	logrus.Tracef("GetChargerType returned %s", ret)

	return ret, nil
}

func chargerTypeOf(usbType string) battery.ChargerType {
	switch usbType {
	case "SDP":
		return battery.ChargerStdHost
	case "CDP":
		return battery.ChargerHost
	case "DCP", "PD", "PD_PPS", "PD_DRP", "C":
		return battery.ChargerStandard
	case "", "Unknown":
		return battery.ChargerUnknown
	default:
		return battery.ChargerNonStandard
	}
}

// ChargerReport is what the charging IC says about its own progress.
type ChargerReport struct {
	Phase      battery.ChargingState
	Full       bool
	Recharging bool
}

// GetChargerReport reads status, charge_type and recharging from the battery
// supply.
func (s *Supply) GetChargerReport() (ChargerReport, error) {
	logrus.Tracef("GetChargerReport called")

	var r ChargerReport
	status, err := s.ReadAttr(s.batteryKey(AttrStatus))
	if err != nil {
		return r, err
	}

	switch status {
	case "Full":
		r.Phase = battery.StateBatFull
		r.Full = true
	case "Charging":
		chargeType, err := s.ReadAttr(s.batteryKey(AttrChargeType))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return r, err
		}
		r.Phase = phaseOf(chargeType)
	}

	r.Recharging, err = s.readBool(s.batteryKey(AttrRecharging))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return r, err
	}

	logrus.Tracef("GetChargerReport returned %+v", r)
	return r, nil
}

func phaseOf(chargeType string) battery.ChargingState {
	switch chargeType {
	case "Trickle":
		return battery.StatePre
	case "Taper":
		return battery.StateTopOff
	default:
		// Fast, Standard, Adaptive, or a driver that does not say.
		return battery.StateCC
	}
}
