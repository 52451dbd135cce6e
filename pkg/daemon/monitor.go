package daemon

import (
	"reflect"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/events"
)

// powerSupply is what the monitor needs from the hardware. *power.Supply
// implements it.
type powerSupply interface {
	Read() (battery.Reading, error)
	IsChargerOnline() (bool, error)
	IsChargingEnabled() (bool, error)
	EnableCharging() error
	DisableCharging() error
	SetChargeVoltageLimit(mv int) error
	ResetFuelGauge() error
	Close() error
}

var (
	// tickLock is held for a whole tick, and by handlers that touch state.
	tickLock       = &sync.Mutex{}
	state          = battery.NewState()
	lastOutputs    battery.Outputs
	lastTickTime   time.Time
	appliedCVLimit = -1

	// wakeup makes the loop tick before the period is over.
	wakeup = make(chan struct{}, 1)
)

func requestTick() {
	select {
	case wakeup <- struct{}{}:
	default:
	}
}

// runTick reads the hardware, advances the state and applies the result.
// missed tells it that ticks were skipped, for example during suspend, and
// the wall time since the last tick should not be trusted.
func runTick(missed bool) battery.Outputs {
	tickLock.Lock()
	defer tickLock.Unlock()

	return tickLocked(missed)
}

// updateState changes the state under the lock and ticks right away, so the
// caller sees the effect of its change.
func updateState(fn func(s *battery.State)) battery.Outputs {
	tickLock.Lock()
	defer tickLock.Unlock()

	fn(&state)
	return tickLocked(false)
}

func tickLocked(missed bool) battery.Outputs {
	in, err := supply.Read()
	if err != nil {
		logrus.WithError(err).Warn("failed to read some power supply fields, keeping their previous values")
	}

	now := time.Now().Round(0)
	if !lastTickTime.IsZero() {
		in.Elapsed = now.Sub(lastTickTime)
		if in.Elapsed < 0 || missed {
			in.Elapsed = loopInterval
		}
	}
	lastTickTime = now

	prev := state
	prev.UserDisabled = conf.ChargingDisabled()

	next, out := battery.Tick(conf.Params(), prev, in)

	applyOutputs(next, out)
	publishChanges(prev, next, out)

	state = next
	lastOutputs = out

	printStatus(next, out)

	return out
}

func applyOutputs(s battery.State, out battery.Outputs) {
	// Without a charger there is nothing to switch. The next plug-in wakes
	// the loop and decides then.
	if s.ChargerExists {
		isChargingEnabled, err := supply.IsChargingEnabled()
		if err != nil {
			logrus.Errorf("IsChargingEnabled failed: %v", err)
			isChargingEnabled = !out.ChargingEnabled
		}

		fields := logrus.Fields{
			"uiSoc":         out.UISOC,
			"chargingState": out.ChargingState,
			"guardFailure":  out.GuardFailure,
			"userDisabled":  s.UserDisabled,
		}
		if out.ChargingEnabled && !isChargingEnabled {
			logrus.WithFields(fields).Info("enabling charging")
			if err := supply.EnableCharging(); err != nil {
				logrus.Errorf("EnableCharging failed: %v", err)
			}
		} else if !out.ChargingEnabled && isChargingEnabled {
			logrus.WithFields(fields).Info("disabling charging")
			if err := supply.DisableCharging(); err != nil {
				logrus.Errorf("DisableCharging failed: %v", err)
			}
		}
	}

	if out.ChargeVoltageLimitMV != appliedCVLimit {
		logrus.WithFields(logrus.Fields{
			"limitMV":       out.ChargeVoltageLimitMV,
			"pluggedInTime": s.PluggedInTime,
		}).Info("changing charge voltage limit")
		if err := supply.SetChargeVoltageLimit(out.ChargeVoltageLimitMV); err != nil {
			logrus.Errorf("SetChargeVoltageLimit failed: %v", err)
		} else {
			appliedCVLimit = out.ChargeVoltageLimitMV
		}
	}

	if out.ResetFuelGauge {
		logrus.WithField("uiSoc", out.UISOC).Debug("resetting fuel gauge")
		if err := supply.ResetFuelGauge(); err != nil {
			logrus.Errorf("ResetFuelGauge failed: %v", err)
		}
	}
}

func publishChanges(prev, next battery.State, out battery.Outputs) {
	ts := time.Now().Unix()

	if out.ChargerEvent {
		logrus.WithFields(logrus.Fields{
			"present": next.ChargerExists,
			"type":    next.ChargerType,
		}).Info("charger changed")
		sseHub.Publish(events.Charger, events.ChargerEvent{
			Present: next.ChargerExists,
			Type:    string(next.ChargerType),
			Ts:      ts,
		})
	}

	if prev.UISOC != next.UISOC {
		sseHub.Publish(events.UISOC, events.UISOCEvent{
			From: prev.UISOC,
			To:   next.UISOC,
			SOC:  next.SOC,
			Ts:   ts,
		})
	}

	if prev.ChargingState != next.ChargingState {
		logrus.WithFields(logrus.Fields{
			"from": prev.ChargingState,
			"to":   next.ChargingState,
		}).Info("charging state changed")
		sseHub.Publish(events.State, events.StateEvent{
			From: string(prev.ChargingState),
			To:   string(next.ChargingState),
			Ts:   ts,
		})
	}

	if out.GuardFailure != battery.GuardNone && out.GuardFailure != lastOutputs.GuardFailure {
		logrus.WithFields(logrus.Fields{
			"guard":          out.GuardFailure,
			"state":          next.ChargingState,
			"temperatureC":   next.TemperatureC,
			"chargerVoltage": next.ChargerVoltageMV,
		}).Warn("charging guard tripped")
		sseHub.Publish(events.Guard, events.GuardEvent{
			Guard:        string(out.GuardFailure),
			State:        string(next.ChargingState),
			TemperatureC: next.TemperatureC,
			ChargerMV:    next.ChargerVoltageMV,
			Ts:           ts,
		})
	}

	if out.Shutdown && !lastOutputs.Shutdown {
		logrus.WithField("temperatureC", next.TemperatureC).Error("battery temperature is critical, the system should power off")
		sseHub.Publish(events.Shutdown, events.ShutdownEvent{
			TemperatureC: next.TemperatureC,
			Ts:           ts,
		})
	}
}

var lastPrintTime time.Time

type loopStatus struct {
	soc             int
	uiSoc           int
	chargingState   battery.ChargingState
	chargerExists   bool
	chargingEnabled bool
	health          battery.Health
	notifyCode      battery.NotifyCode
}

var lastStatus loopStatus

func printStatus(s battery.State, out battery.Outputs) {
	currentStatus := loopStatus{
		soc:             s.SOC,
		uiSoc:           out.UISOC,
		chargingState:   out.ChargingState,
		chargerExists:   s.ChargerExists,
		chargingEnabled: out.ChargingEnabled,
		health:          out.Health,
		notifyCode:      out.NotifyCode,
	}

	fields := logrus.Fields{
		"soc":             s.SOC,
		"uiSoc":           out.UISOC,
		"chargingState":   out.ChargingState,
		"chargerExists":   s.ChargerExists,
		"chargingEnabled": out.ChargingEnabled,
		"batVoltageMV":    s.BatVoltageMV,
		"temperatureC":    s.TemperatureC,
		"health":          out.Health,
		"notify":          out.NotifyCode.String(),
	}

	defer func() { lastPrintTime = time.Now() }()

	// Skip printing if the last print was less than loopInterval+1 seconds ago and everything is the same.
	if time.Since(lastPrintTime) < loopInterval+time.Second && reflect.DeepEqual(lastStatus, currentStatus) {
		logrus.WithFields(fields).Trace("monitor loop status")
		return
	}

	logrus.WithFields(fields).Debug("monitor loop status")

	lastStatus = currentStatus
}
