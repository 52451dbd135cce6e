package battery

import "time"

// UISOCUninitialized is the UISOC value before the first reconciliation.
const UISOCUninitialized = -1

type tempZone int

const (
	tempNormal tempZone = iota
	tempHigh
	tempLow
)

func (z tempZone) String() string {
	switch z {
	case tempHigh:
		return "high"
	case tempLow:
		return "low"
	default:
		return "normal"
	}
}

// State is the battery bookkeeping carried from one tick to the next.
type State struct {
	SOC           int           `json:"soc"`
	UISOC         int           `json:"uiSoc"`
	ChargerExists bool          `json:"chargerExists"`
	BatteryExists bool          `json:"batteryExists"`
	ChargerType   ChargerType   `json:"chargerType"`
	ChargingState ChargingState `json:"chargingState"`
	BatFull       bool          `json:"batFull"`
	InRecharging  bool          `json:"inRecharging"`

	BatVoltageMV      int `json:"batVoltageMV"`
	ChargerVoltageMV  int `json:"chargerVoltageMV"`
	TemperatureC      int `json:"temperatureC"`
	ZCVMV             int `json:"zcvMV"`
	ChargingCurrentMA int `json:"chargingCurrentMA"`

	TotalChargingTime time.Duration `json:"totalChargingTime"`
	PluggedInTime     time.Duration `json:"pluggedInTime"`

	// User commands and test overrides. The daemon sets these between ticks.
	UserDisabled        bool             `json:"userDisabled"`
	Discharge           DischargeCommand `json:"discharge"`
	CallActive          bool             `json:"callActive"`
	RefreshUISOC        bool             `json:"refreshUiSoc"`
	TemperatureOverride *int             `json:"temperatureOverride,omitempty"`
	NotifyTestMode      int              `json:"notifyTestMode"`

	tempZone       tempZone
	resetArmed     bool
	fullCounter    int
	nPercentCount  int
	syncCounter    int
	seenReading    bool
	voltageAvg     window
	temperatureAvg window
	currentAvg     window
}

// NewState returns the state the monitor starts with.
func NewState() State {
	return State{
		UISOC:         UISOCUninitialized,
		ChargingState: StatePre,
		BatteryExists: true,
		ChargerType:   ChargerUnknown,
	}
}

// Initialized reports whether UISOC has been reconciled at least once.
func (s State) Initialized() bool {
	return s.UISOC != UISOCUninitialized
}

// TemperatureZone is the position of the temperature hysteresis: normal, high or low.
func (s State) TemperatureZone() string {
	return s.tempZone.String()
}

// ResetArmed reports whether a full-cycle fuel-gauge reset is still pending.
func (s State) ResetArmed() bool {
	return s.resetArmed
}

func (s State) clone() State {
	s.voltageAvg = s.voltageAvg.clone()
	s.temperatureAvg = s.temperatureAvg.clone()
	s.currentAvg = s.currentAvg.clone()
	if s.TemperatureOverride != nil {
		v := *s.TemperatureOverride
		s.TemperatureOverride = &v
	}
	return s
}
