package battery

import "time"

// ChargingState is the value of the charging-safety state machine.
type ChargingState string

const (
	StatePre     ChargingState = "PRE"
	StateCC      ChargingState = "CC"
	StateTopOff  ChargingState = "TOPOFF"
	StateBatFull ChargingState = "BATFULL"
	StateError   ChargingState = "ERROR"
	StateHold    ChargingState = "HOLD"
)

// Valid reports whether s is one of the known states.
func (s ChargingState) Valid() bool {
	switch s {
	case StatePre, StateCC, StateTopOff, StateBatFull, StateError, StateHold:
		return true
	}
	return false
}

// ChargerType is the kind of charger the detection collaborator reported.
type ChargerType string

const (
	ChargerUnknown     ChargerType = "Unknown"
	ChargerStdHost     ChargerType = "StandardHost"
	ChargerHost        ChargerType = "ChargingHost"
	ChargerNonStandard ChargerType = "NonStandard"
	ChargerStandard    ChargerType = "Standard"
)

// Health mirrors what a power supply would report as battery health.
type Health string

const (
	HealthUnknown     Health = "Unknown"
	HealthGood        Health = "Good"
	HealthOverheat    Health = "Overheat"
	HealthCold        Health = "Cold"
	HealthOvervoltage Health = "Overvoltage"
)

// SupplyStatus is the user-facing charging status.
type SupplyStatus string

const (
	StatusCharging       SupplyStatus = "Charging"
	StatusNotCharging    SupplyStatus = "NotCharging"
	StatusUnknown        SupplyStatus = "Unknown"
	StatusCmdDischarging SupplyStatus = "CmdDischarging"
)

// Guard names whichever check made the guard fail.
type Guard string

const (
	GuardNone           Guard = ""
	GuardDischarge      Guard = "discharge"
	GuardTemperature    Guard = "temperature"
	GuardChargerVoltage Guard = "chargerVoltage"
	GuardCallState      Guard = "callState"
	GuardChargingTime   Guard = "chargingTime"
)

// DischargeCommand is a pending user command for the guard.
type DischargeCommand int

const (
	// DischargeNone means no command is pending.
	DischargeNone DischargeCommand = iota
	// DischargeStart forces ERROR until DischargeResume is received.
	DischargeStart
	// DischargeResume moves back to PRE once and then becomes DischargeNone.
	DischargeResume
)

// Reading is what the collaborators supply each tick.
type Reading struct {
	SOC               int `json:"soc"`
	BatVoltageMV      int `json:"batVoltageMV"`
	ChargerVoltageMV  int `json:"chargerVoltageMV"`
	TemperatureC      int `json:"temperatureC"`
	ZCVMV             int `json:"zcvMV"`
	ChargingCurrentMA int `json:"chargingCurrentMA"`

	ChargerPresent bool        `json:"chargerPresent"`
	BatteryPresent bool        `json:"batteryPresent"`
	ChargerType    ChargerType `json:"chargerType"`

	// Reported by the charging collaborator. An empty ChargerPhase means
	// the collaborator has no opinion this tick.
	ChargerPhase ChargingState `json:"chargerPhase,omitempty"`
	Full         bool          `json:"full"`
	Recharging   bool          `json:"recharging"`

	// Elapsed is the wall time since the previous tick.
	Elapsed time.Duration `json:"elapsed"`
}

// Outputs are what the daemon applies to the collaborators after a tick.
type Outputs struct {
	UISOC           int           `json:"uiSoc"`
	ChargingEnabled bool          `json:"chargingEnabled"`
	ResetFuelGauge  bool          `json:"resetFuelGauge"`
	ChargingState   ChargingState `json:"chargingState"`
	Health          Health        `json:"health"`
	Status          SupplyStatus  `json:"status"`
	NotifyCode      NotifyCode    `json:"notifyCode"`
	// ChargeVoltageLimitMV is 0 when no limit applies.
	ChargeVoltageLimitMV int   `json:"chargeVoltageLimitMV"`
	Shutdown             bool  `json:"shutdown"`
	ChargerEvent         bool  `json:"chargerEvent"`
	GuardFailure         Guard `json:"guardFailure,omitempty"`
}
