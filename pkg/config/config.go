package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
)

type Config interface {
	// Params resolves every battery threshold, falling back to the defaults.
	Params() battery.Params
	ThermalSources() []ThermalSource
	LoopInterval() time.Duration
	PowerSupplyRoot() string
	BatterySupply() string
	ChargerSupply() string
	AllowNonRootAccess() bool
	ChargingDisabled() bool

	SetAllowNonRootAccess(bool)
	SetChargingDisabled(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}

// ThermalSource is one sensor of the virtual board temperature.
type ThermalSource struct {
	// Path of a thermal zone or its temp attribute.
	Path string `json:"path"`
	// Alpha, Offset and Weight follow thermal.Source: Alpha and Weight are
	// out of 1000, Offset is milli-°C.
	Alpha  int64 `json:"alpha"`
	Offset int64 `json:"offset"`
	Weight int64 `json:"weight"`
}
