package main

import (
	"encoding/json"
	"math"

	"github.com/spf13/cobra"
)

type statusJSON struct {
	Charging      statusChargingJSON `json:"charging"`
	Battery       statusBatteryJSON  `json:"battery"`
	Configuration statusConfigJSON   `json:"configuration"`
	System        []statusSystemJSON `json:"systemBatteries,omitempty"`

	// Thermal is omitted when the daemon has no virtual sensor.
	Thermal *statusThermalJSON `json:"thermal,omitempty"`
}

type statusChargingJSON struct {
	PluggedIn            bool   `json:"pluggedIn"`
	ChargerType          string `json:"chargerType"`
	ChargerVoltageMV     int    `json:"chargerVoltageMV"`
	Enabled              bool   `json:"enabled"`
	UserDisabled         bool   `json:"userDisabled"`
	State                string `json:"state"`
	GuardFailure         string `json:"guardFailure,omitempty"`
	ChargingTimeSeconds  int    `json:"chargingTimeSeconds"`
	PluggedInSeconds     int    `json:"pluggedInSeconds"`
	ChargeVoltageLimitMV int    `json:"chargeVoltageLimitMV"`
}

type statusBatteryJSON struct {
	Present          bool   `json:"present"`
	ChargePercent    *int   `json:"chargePercent"`
	FuelGaugePercent int    `json:"fuelGaugePercent"`
	Status           string `json:"status"`
	Health           string `json:"health"`
	VoltageMV        int    `json:"voltageMV"`
	OpenCircuitMV    int    `json:"openCircuitMV"`
	CurrentMA        int    `json:"currentMA"`
	TemperatureC     int    `json:"temperatureC"`
	TemperatureZone  string `json:"temperatureZone"`
	ThermalTestMode  bool   `json:"thermalTestMode"`
	NotifyCode       uint32 `json:"notifyCode"`
	Shutdown         bool   `json:"shutdown"`
}

type statusConfigJSON struct {
	MinChargeTempC      int  `json:"minChargeTempC"`
	MaxChargeTempC      int  `json:"maxChargeTempC"`
	ChargerMinMV        int  `json:"chargerMinMV"`
	ChargerMaxMV        int  `json:"chargerMaxMV"`
	SafetyTimer         bool `json:"safetyTimer"`
	MaxChargingSeconds  int  `json:"maxChargingSeconds"`
	StopChargingInCall  bool `json:"stopChargingInCall"`
	ThermalShutdown     bool `json:"thermalShutdown"`
	AllowNonRootAccess  bool `json:"allowNonRootAccess"`
	LoopIntervalSeconds int  `json:"loopIntervalSeconds"`
}

type statusSystemJSON struct {
	State           string  `json:"state"`
	ChargePercent   float64 `json:"chargePercent"`
	HealthPercent   float64 `json:"healthPercent"`
	ChargeRateWatts float64 `json:"chargeRateWatts"`
}

type statusThermalJSON struct {
	TemperatureC float64 `json:"temperatureC"`
	Sources      int     `json:"sources"`
}

func buildStatusJSON(data *statusData) statusJSON {
	s := data.status.State
	out := data.status.Outputs
	p := data.status.Config.Params

	// An uninitialized charge is reported as null.
	var chargePercent *int
	if s.Initialized() {
		v := out.UISOC
		chargePercent = &v
	}

	ret := statusJSON{
		Charging: statusChargingJSON{
			PluggedIn:            s.ChargerExists,
			ChargerType:          string(s.ChargerType),
			ChargerVoltageMV:     s.ChargerVoltageMV,
			Enabled:              out.ChargingEnabled,
			UserDisabled:         s.UserDisabled,
			State:                string(out.ChargingState),
			GuardFailure:         string(out.GuardFailure),
			ChargingTimeSeconds:  int(s.TotalChargingTime.Seconds()),
			PluggedInSeconds:     int(s.PluggedInTime.Seconds()),
			ChargeVoltageLimitMV: out.ChargeVoltageLimitMV,
		},
		Battery: statusBatteryJSON{
			Present:          s.BatteryExists,
			ChargePercent:    chargePercent,
			FuelGaugePercent: s.SOC,
			Status:           string(out.Status),
			Health:           string(out.Health),
			VoltageMV:        s.BatVoltageMV,
			OpenCircuitMV:    s.ZCVMV,
			CurrentMA:        s.ChargingCurrentMA,
			TemperatureC:     s.TemperatureC,
			TemperatureZone:  data.status.TemperatureZone,
			ThermalTestMode:  s.TemperatureOverride != nil,
			NotifyCode:       uint32(out.NotifyCode),
			Shutdown:         out.Shutdown,
		},
		Configuration: statusConfigJSON{
			MinChargeTempC:      p.MinChargeTempC,
			MaxChargeTempC:      p.MaxChargeTempC,
			ChargerMinMV:        p.ChargerMinMV,
			ChargerMaxMV:        p.ChargerMaxMV,
			SafetyTimer:         p.SafetyTimer,
			MaxChargingSeconds:  int(p.MaxChargingTime.Seconds()),
			StopChargingInCall:  p.StopChargingInCall,
			ThermalShutdown:     p.ThermalShutdown,
			AllowNonRootAccess:  data.status.Config.AllowNonRootAccess,
			LoopIntervalSeconds: int(data.status.Config.LoopInterval.Seconds()),
		},
	}

	for _, b := range data.batteries {
		ret.System = append(ret.System, statusSystemJSON{
			State:           b.State,
			ChargePercent:   math.Round(b.Percent()*10) / 10,
			HealthPercent:   math.Round(b.HealthPercent()*10) / 10,
			ChargeRateWatts: math.Round(b.ChargeRate/1e3*10) / 10,
		})
	}

	if data.thermal != nil {
		ret.Thermal = &statusThermalJSON{
			TemperatureC: math.Round(float64(data.thermal.MilliCelsius)/100) / 10,
			Sources:      len(data.thermal.Sources),
		}
	}

	return ret
}

func printStatusJSON(cmd *cobra.Command, data *statusData) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(buildStatusJSON(data))
}

