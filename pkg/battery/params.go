package battery

import "time"

// Params holds every tuning knob of Tick. It is resolved once from config and
// treated as read-only afterwards.
type Params struct {
	// ZeroPercentVoltageMV enables 0% tracking at or below this voltage.
	ZeroPercentVoltageMV int
	// FullTrackingTicks is how many ticks each +1 step of 100% tracking takes.
	FullTrackingTicks int
	// NPercentCheckpoint is the UI SOC n% tracking settles at. 0 disables it.
	NPercentCheckpoint    int
	NPercentZCVMV         int
	NPercentTrackingTicks int
	// SyncToRealTicks is how many ticks each -1 step of sync-to-real takes.
	SyncToRealTicks int
	// ImmediateSync makes sync-to-real step down every tick.
	ImmediateSync bool

	MaxChargeTempC     int
	MinChargeTempC     int
	HighRecoverDeltaC  int
	LowRecoverDeltaC   int
	LowTempProtect     bool
	ChargerMaxMV       int
	ChargerMinMV       int
	ChargerMinEnabled  bool
	StopChargingInCall bool
	CallHoldVoltageMV  int
	SafetyTimer        bool
	MaxChargingTime    time.Duration

	AverageWindow int
	// ChargerCurrentMA seeds the current average when a charger shows up.
	ChargerCurrentMA map[ChargerType]int

	NotifyMaxCurrentMA    int
	NotifyMaxBatVoltageMV int
	NotifyCurrentAfter    time.Duration

	ThermalShutdown bool
	CriticalTempC   int

	LongPlugInThreshold time.Duration
	LongPlugInCVMV      int
}

// DefaultParams returns the values the MT8127 reference board ships with.
func DefaultParams() Params {
	return Params{
		ZeroPercentVoltageMV:  3450,
		FullTrackingTicks:     1,
		NPercentCheckpoint:    0,
		NPercentZCVMV:         3700,
		NPercentTrackingTicks: 2,
		SyncToRealTicks:       6,
		ImmediateSync:         false,

		MaxChargeTempC:     50,
		MinChargeTempC:     0,
		HighRecoverDeltaC:  3,
		LowRecoverDeltaC:   6,
		LowTempProtect:     true,
		ChargerMaxMV:       6500,
		ChargerMinMV:       4400,
		ChargerMinEnabled:  true,
		StopChargingInCall: false,
		CallHoldVoltageMV:  4050,
		SafetyTimer:        true,
		MaxChargingTime:    12 * time.Hour,

		AverageWindow: 30,
		ChargerCurrentMA: map[ChargerType]int{
			ChargerStandard:    800,
			ChargerHost:        500,
			ChargerNonStandard: 500,
			ChargerStdHost:     500,
			ChargerUnknown:     500,
		},

		NotifyMaxCurrentMA:    1000,
		NotifyMaxBatVoltageMV: 4350,
		NotifyCurrentAfter:    300 * time.Second,

		ThermalShutdown: true,
		CriticalTempC:   60,

		LongPlugInThreshold: 14 * 24 * time.Hour,
		LongPlugInCVMV:      4100,
	}
}

func (p Params) fullTicks() int {
	if p.FullTrackingTicks < 1 {
		return 1
	}
	return p.FullTrackingTicks
}

func (p Params) nPercentTicks() int {
	if p.NPercentTrackingTicks < 1 {
		return 1
	}
	return p.NPercentTrackingTicks
}

func (p Params) syncTicks() int {
	if p.SyncToRealTicks < 1 {
		return 1
	}
	return p.SyncToRealTicks
}

func (p Params) chargerCurrent(t ChargerType) int {
	if v, ok := p.ChargerCurrentMA[t]; ok {
		return v
	}
	return p.ChargerCurrentMA[ChargerUnknown]
}
