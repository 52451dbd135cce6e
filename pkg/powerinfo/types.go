package powerinfo

import (
	"math"

	"github.com/distatus/battery"
)

// Battery is the OS view of one battery, shared by the daemon API and the CLI.
// Units:
// - Current, Full, Design: mWh
// - ChargeRate: mW (negative when discharging)
// - Voltage, DesignVoltage: Volts
type Battery struct {
	State         string  `json:"state"`
	Current       float64 `json:"current"`
	Full          float64 `json:"full"`
	Design        float64 `json:"design"`
	ChargeRate    float64 `json:"chargeRate"`
	Voltage       float64 `json:"voltage"`
	DesignVoltage float64 `json:"designVoltage"`
}

// FromSystem converts a distatus/battery entry.
func FromSystem(b *battery.Battery) Battery {
	ret := Battery{
		State:         b.State.String(),
		Current:       b.Current,
		Full:          b.Full,
		Design:        b.Design,
		ChargeRate:    b.ChargeRate,
		Voltage:       b.Voltage,
		DesignVoltage: b.DesignVoltage,
	}
	if ret.State == "Discharging" {
		ret.ChargeRate = -math.Abs(ret.ChargeRate)
	}
	return ret
}

// Percent returns the charge relative to the last full capacity.
func (b Battery) Percent() float64 {
	if b.Full <= 0 {
		return 0
	}
	return b.Current / b.Full * 100
}

// HealthPercent returns the last full capacity relative to the design capacity.
func (b Battery) HealthPercent() float64 {
	if b.Design <= 0 {
		return 0
	}
	return b.Full / b.Design * 100
}
