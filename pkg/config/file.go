package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		LoopIntervalSeconds: ptr.To(10),
		AllowNonRootAccess:  ptr.To(false),
		ChargingDisabled:    ptr.To(false),
		PowerSupplyRoot:     ptr.To("/sys/class/power_supply"),
		BatterySupply:       ptr.To("battery"),
		ChargerSupply:       ptr.To("charger"),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

// RawFileConfig is the on-disk form. Every field is optional.
type RawFileConfig struct {
	LoopIntervalSeconds *int    `json:"loopIntervalSeconds,omitempty"`
	AllowNonRootAccess  *bool   `json:"allowNonRootAccess,omitempty"`
	ChargingDisabled    *bool   `json:"chargingDisabled,omitempty"`
	PowerSupplyRoot     *string `json:"powerSupplyRoot,omitempty"`
	BatterySupply       *string `json:"batterySupply,omitempty"`
	ChargerSupply       *string `json:"chargerSupply,omitempty"`

	ZeroPercentVoltageMV  *int  `json:"zeroPercentVoltageMV,omitempty"`
	FullTrackingTicks     *int  `json:"fullTrackingTicks,omitempty"`
	NPercentCheckpoint    *int  `json:"nPercentCheckpoint,omitempty"`
	NPercentZCVMV         *int  `json:"nPercentZcvMV,omitempty"`
	NPercentTrackingTicks *int  `json:"nPercentTrackingTicks,omitempty"`
	SyncToRealTicks       *int  `json:"syncToRealTicks,omitempty"`
	ImmediateSync         *bool `json:"immediateSync,omitempty"`

	MaxChargeTempC         *int  `json:"maxChargeTempC,omitempty"`
	MinChargeTempC         *int  `json:"minChargeTempC,omitempty"`
	HighRecoverDeltaC      *int  `json:"highRecoverDeltaC,omitempty"`
	LowRecoverDeltaC       *int  `json:"lowRecoverDeltaC,omitempty"`
	LowTempProtect         *bool `json:"lowTempProtect,omitempty"`
	ChargerMaxMV           *int  `json:"chargerMaxMV,omitempty"`
	ChargerMinMV           *int  `json:"chargerMinMV,omitempty"`
	ChargerMinEnabled      *bool `json:"chargerMinEnabled,omitempty"`
	StopChargingInCall     *bool `json:"stopChargingInCall,omitempty"`
	CallHoldVoltageMV      *int  `json:"callHoldVoltageMV,omitempty"`
	SafetyTimer            *bool `json:"safetyTimer,omitempty"`
	MaxChargingTimeSeconds *int  `json:"maxChargingTimeSeconds,omitempty"`

	AverageWindow    *int           `json:"averageWindow,omitempty"`
	ChargerCurrentMA map[string]int `json:"chargerCurrentMA,omitempty"`

	NotifyMaxCurrentMA        *int `json:"notifyMaxCurrentMA,omitempty"`
	NotifyMaxBatVoltageMV     *int `json:"notifyMaxBatVoltageMV,omitempty"`
	NotifyCurrentAfterSeconds *int `json:"notifyCurrentAfterSeconds,omitempty"`

	ThermalShutdown *bool `json:"thermalShutdown,omitempty"`
	CriticalTempC   *int  `json:"criticalTempC,omitempty"`

	LongPlugInThresholdSeconds *int `json:"longPlugInThresholdSeconds,omitempty"`
	LongPlugInCVMV             *int `json:"longPlugInCVMV,omitempty"`

	ThermalSources []ThermalSource `json:"thermalSources,omitempty"`
}

func override[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func overrideSeconds(dst *time.Duration, src *int) {
	if src != nil {
		*dst = time.Duration(*src) * time.Second
	}
}

func resolve(c *RawFileConfig) battery.Params {
	p := battery.DefaultParams()

	override(&p.ZeroPercentVoltageMV, c.ZeroPercentVoltageMV)
	override(&p.FullTrackingTicks, c.FullTrackingTicks)
	override(&p.NPercentCheckpoint, c.NPercentCheckpoint)
	override(&p.NPercentZCVMV, c.NPercentZCVMV)
	override(&p.NPercentTrackingTicks, c.NPercentTrackingTicks)
	override(&p.SyncToRealTicks, c.SyncToRealTicks)
	override(&p.ImmediateSync, c.ImmediateSync)

	override(&p.MaxChargeTempC, c.MaxChargeTempC)
	override(&p.MinChargeTempC, c.MinChargeTempC)
	override(&p.HighRecoverDeltaC, c.HighRecoverDeltaC)
	override(&p.LowRecoverDeltaC, c.LowRecoverDeltaC)
	override(&p.LowTempProtect, c.LowTempProtect)
	override(&p.ChargerMaxMV, c.ChargerMaxMV)
	override(&p.ChargerMinMV, c.ChargerMinMV)
	override(&p.ChargerMinEnabled, c.ChargerMinEnabled)
	override(&p.StopChargingInCall, c.StopChargingInCall)
	override(&p.CallHoldVoltageMV, c.CallHoldVoltageMV)
	override(&p.SafetyTimer, c.SafetyTimer)
	overrideSeconds(&p.MaxChargingTime, c.MaxChargingTimeSeconds)

	override(&p.AverageWindow, c.AverageWindow)
	for k, v := range c.ChargerCurrentMA {
		p.ChargerCurrentMA[battery.ChargerType(k)] = v
	}

	override(&p.NotifyMaxCurrentMA, c.NotifyMaxCurrentMA)
	override(&p.NotifyMaxBatVoltageMV, c.NotifyMaxBatVoltageMV)
	overrideSeconds(&p.NotifyCurrentAfter, c.NotifyCurrentAfterSeconds)

	override(&p.ThermalShutdown, c.ThermalShutdown)
	override(&p.CriticalTempC, c.CriticalTempC)

	overrideSeconds(&p.LongPlugInThreshold, c.LongPlugInThresholdSeconds)
	override(&p.LongPlugInCVMV, c.LongPlugInCVMV)

	return p
}

// validate rejects combinations the monitor cannot run with.
func validate(c *RawFileConfig) error {
	p := resolve(c)

	if p.MinChargeTempC >= p.MaxChargeTempC {
		return pkgerrors.Errorf("minChargeTempC (%d) must be below maxChargeTempC (%d)", p.MinChargeTempC, p.MaxChargeTempC)
	}
	if p.HighRecoverDeltaC < 0 || p.LowRecoverDeltaC < 0 {
		return pkgerrors.New("temperature recover deltas must not be negative")
	}
	if p.ChargerMinMV >= p.ChargerMaxMV {
		return pkgerrors.Errorf("chargerMinMV (%d) must be below chargerMaxMV (%d)", p.ChargerMinMV, p.ChargerMaxMV)
	}
	if p.NPercentCheckpoint < 0 || p.NPercentCheckpoint > 100 {
		return pkgerrors.Errorf("nPercentCheckpoint must be between 0 and 100, got %d", p.NPercentCheckpoint)
	}
	for name, v := range map[string]int{
		"fullTrackingTicks":     p.FullTrackingTicks,
		"nPercentTrackingTicks": p.NPercentTrackingTicks,
		"syncToRealTicks":       p.SyncToRealTicks,
		"averageWindow":         p.AverageWindow,
	} {
		if v < 1 {
			return pkgerrors.Errorf("%s must be at least 1, got %d", name, v)
		}
	}
	if c.LoopIntervalSeconds != nil && *c.LoopIntervalSeconds < 1 {
		return pkgerrors.Errorf("loopIntervalSeconds must be at least 1, got %d", *c.LoopIntervalSeconds)
	}
	for i, s := range c.ThermalSources {
		if s.Path == "" {
			return pkgerrors.Errorf("thermalSources[%d] has no path", i)
		}
		if s.Alpha < 0 || s.Alpha > 1000 {
			return pkgerrors.Errorf("thermalSources[%d] alpha must be between 0 and 1000, got %d", i, s.Alpha)
		}
	}

	return nil
}

func (f *File) Params() battery.Params {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return resolve(f.c)
}

func (f *File) ThermalSources() []ThermalSource {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]ThermalSource(nil), f.c.ThermalSources...)
}

func (f *File) LoopInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	s := ptr.Deref(f.c.LoopIntervalSeconds, *defaultFileConfig.LoopIntervalSeconds)
	return time.Duration(s) * time.Second
}

func (f *File) PowerSupplyRoot() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.PowerSupplyRoot, *defaultFileConfig.PowerSupplyRoot)
}

func (f *File) BatterySupply() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.BatterySupply, *defaultFileConfig.BatterySupply)
}

func (f *File) ChargerSupply() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.ChargerSupply, *defaultFileConfig.ChargerSupply)
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.AllowNonRootAccess, *defaultFileConfig.AllowNonRootAccess)
}

func (f *File) ChargingDisabled() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.ChargingDisabled, *defaultFileConfig.ChargingDisabled)
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) SetChargingDisabled(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.ChargingDisabled = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := validate(&conf); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	p := f.Params()
	return logrus.Fields{
		"loopInterval":       f.LoopInterval(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"chargingDisabled":   f.ChargingDisabled(),
		"powerSupplyRoot":    f.PowerSupplyRoot(),
		"maxChargeTempC":     p.MaxChargeTempC,
		"minChargeTempC":     p.MinChargeTempC,
		"chargerMaxMV":       p.ChargerMaxMV,
		"maxChargingTime":    p.MaxChargingTime,
		"thermalSources":     len(f.ThermalSources()),
	}
}
