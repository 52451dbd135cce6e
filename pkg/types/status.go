package types

import (
	"time"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/config"
)

// Status is the snapshot returned by GET /status. It is shared between the
// daemon and the client.
type Status struct {
	State    battery.State   `json:"state"`
	Outputs  battery.Outputs `json:"outputs"`
	Config   ConfigInfo      `json:"config"`
	LastTick time.Time       `json:"lastTick"`
	// TemperatureZone is normal, high or low.
	TemperatureZone string `json:"temperatureZone"`
	ResetArmed      bool   `json:"resetArmed"`
	Version         string `json:"version"`
}

// ConfigInfo is the resolved configuration returned by GET /config.
type ConfigInfo struct {
	Params             battery.Params         `json:"params"`
	ThermalSources     []config.ThermalSource `json:"thermalSources,omitempty"`
	LoopInterval       time.Duration          `json:"loopInterval"`
	PowerSupplyRoot    string                 `json:"powerSupplyRoot"`
	BatterySupply      string                 `json:"batterySupply"`
	ChargerSupply      string                 `json:"chargerSupply"`
	AllowNonRootAccess bool                   `json:"allowNonRootAccess"`
	ChargingDisabled   bool                   `json:"chargingDisabled"`
}

// NewConfigInfo resolves c.
func NewConfigInfo(c config.Config) ConfigInfo {
	return ConfigInfo{
		Params:             c.Params(),
		ThermalSources:     c.ThermalSources(),
		LoopInterval:       c.LoopInterval(),
		PowerSupplyRoot:    c.PowerSupplyRoot(),
		BatterySupply:      c.BatterySupply(),
		ChargerSupply:      c.ChargerSupply(),
		AllowNonRootAccess: c.AllowNonRootAccess(),
		ChargingDisabled:   c.ChargingDisabled(),
	}
}
