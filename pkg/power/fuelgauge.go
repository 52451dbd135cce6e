package power

import (
	"errors"
	"math"
	"os"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/powerinfo"
)

// getAllBatteries is replaced in tests.
var getAllBatteries = battery.GetAll

// GetSOC returns the fuel-gauge state of charge in percent. Drivers without a
// capacity attribute fall back to the charge the OS reports.
func (s *Supply) GetSOC() (int, error) {
	logrus.Tracef("GetSOC called")

	v, err := s.readInt(s.batteryKey(AttrCapacity))
	if err == nil {
		return int(v), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}

	logrus.Debug("capacity attribute missing, asking the OS for battery charge")
	bats, err := getAllBatteries()
	if len(bats) == 0 {
		if err == nil {
			err = pkgerrors.New("no batteries found")
		}
		return 0, pkgerrors.Wrapf(err, "failed to get battery charge")
	}
	bat := bats[0]
	if bat.Full <= 0 {
		return 0, pkgerrors.New("battery reports zero full capacity")
	}
	return int(math.Round(bat.Current / bat.Full * 100)), nil
}

// ResetFuelGauge asks the fuel gauge to re-sync its model with the battery.
// Drivers without a reset attribute are left alone.
func (s *Supply) ResetFuelGauge() error {
	logrus.Tracef("ResetFuelGauge called")

	if _, err := s.ReadAttr(s.batteryKey(AttrFuelGaugeReset)); errors.Is(err, os.ErrNotExist) {
		logrus.Debug("fuel gauge has no reset attribute, skipping")
		return nil
	}
	return s.WriteAttr(s.batteryKey(AttrFuelGaugeReset), "1")
}

// SystemBatteries lists every battery the OS knows about.
func SystemBatteries() ([]powerinfo.Battery, error) {
	bats, err := getAllBatteries()
	if len(bats) == 0 {
		if err == nil {
			err = pkgerrors.New("no batteries found")
		}
		return nil, pkgerrors.Wrapf(err, "failed to list batteries")
	}
	if err != nil {
		logrus.WithError(err).Debug("some batteries could not be read")
	}

	ret := make([]powerinfo.Battery, 0, len(bats))
	for _, b := range bats {
		if b == nil {
			continue
		}
		ret = append(ret, powerinfo.FromSystem(b))
	}
	return ret, nil
}
