package battery

import "strings"

// NotifyCode is a bitmask of abnormal conditions for the user interface.
type NotifyCode uint32

const (
	NotifyChargerOverVoltage NotifyCode = 0x0001
	NotifyTempHigh           NotifyCode = 0x0002
	NotifyCurrentHigh        NotifyCode = 0x0004
	NotifyBatOverVoltage     NotifyCode = 0x0008
	NotifyChargingOverTime   NotifyCode = 0x0010
	NotifyTempLow            NotifyCode = 0x0020
)

// MaxNotifyTestMode is the highest accepted notify test mode.
const MaxNotifyTestMode = 5

var notifyNames = []struct {
	code NotifyCode
	name string
}{
	{NotifyChargerOverVoltage, "chargerOverVoltage"},
	{NotifyTempHigh, "temperatureHigh"},
	{NotifyCurrentHigh, "currentHigh"},
	{NotifyBatOverVoltage, "batteryOverVoltage"},
	{NotifyChargingOverTime, "chargingOverTime"},
	{NotifyTempLow, "temperatureLow"},
}

func (c NotifyCode) Has(flag NotifyCode) bool {
	return c&flag != 0
}

func (c NotifyCode) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, n := range notifyNames {
		if c.Has(n.code) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// notifyTestCodes maps a test mode to the single bit it forces.
var notifyTestCodes = map[int]NotifyCode{
	1: NotifyChargerOverVoltage,
	2: NotifyTempHigh,
	3: NotifyCurrentHigh,
	4: NotifyBatOverVoltage,
	5: NotifyChargingOverTime,
}

func notify(p Params, s State) NotifyCode {
	if c, ok := notifyTestCodes[s.NotifyTestMode]; ok {
		return c
	}

	var c NotifyCode
	if s.ChargerExists && s.ChargerVoltageMV > p.ChargerMaxMV {
		c |= NotifyChargerOverVoltage
	}
	if s.TemperatureC >= p.MaxChargeTempC {
		c |= NotifyTempHigh
	}
	if p.LowTempProtect && s.TemperatureC < p.MinChargeTempC {
		c |= NotifyTempLow
	}
	if s.ChargerExists && s.ChargingCurrentMA > p.NotifyMaxCurrentMA && s.TotalChargingTime > p.NotifyCurrentAfter {
		c |= NotifyCurrentHigh
	}
	if s.BatVoltageMV > p.NotifyMaxBatVoltageMV {
		c |= NotifyBatOverVoltage
	}
	if s.ChargerExists && !s.BatFull && p.MaxChargingTime > 0 && s.TotalChargingTime >= p.MaxChargingTime {
		c |= NotifyChargingOverTime
	}
	return c
}
