package power

import (
	"errors"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// IsChargingEnabled returns whether charging is allowed.
func (s *Supply) IsChargingEnabled() (bool, error) {
	logrus.Tracef("IsChargingEnabled called")

	v, err := s.ReadAttr(s.batteryKey(AttrChargeBehaviour))
	if err != nil {
		return false, err
	}

	ret := selected(v) == BehaviourAuto
	logrus.Tracef("IsChargingEnabled returned %t", ret)

	return ret, nil
}

// EnableCharging enables charging.
func (s *Supply) EnableCharging() error {
	logrus.Tracef("EnableCharging called")

	return s.WriteAttr(s.batteryKey(AttrChargeBehaviour), BehaviourAuto)
}

// DisableCharging disables charging.
func (s *Supply) DisableCharging() error {
	logrus.Tracef("DisableCharging called")

	return s.WriteAttr(s.batteryKey(AttrChargeBehaviour), BehaviourInhibit)
}

// SetChargeVoltageLimit sets the constant-voltage target in mV. 0 restores
// the design value, and is a no-op on drivers that do not expose one.
func (s *Supply) SetChargeVoltageLimit(mv int) error {
	logrus.Tracef("SetChargeVoltageLimit(%d) called", mv)

	if mv > 0 {
		return s.WriteAttr(s.batteryKey(AttrChargeVoltageMax), strconv.Itoa(mv*1000))
	}

	design, err := s.ReadAttr(s.batteryKey(AttrChargeVoltageMaxDsgn))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.WriteAttr(s.batteryKey(AttrChargeVoltageMax), design)
}

// GetChargeVoltageLimit returns the constant-voltage target in mV.
func (s *Supply) GetChargeVoltageLimit() (int, error) {
	logrus.Tracef("GetChargeVoltageLimit called")

	uv, err := s.readInt(s.batteryKey(AttrChargeVoltageMax))
	if err != nil {
		return 0, err
	}
	return int(uv / 1000), nil
}
