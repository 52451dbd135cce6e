package battery

// Tick advances the bookkeeping by one polling period. prev is not modified.
func Tick(p Params, prev State, in Reading) (State, Outputs) {
	s := prev.clone()
	var out Outputs

	plugged := in.ChargerPresent && !s.ChargerExists
	unplugged := !in.ChargerPresent && s.ChargerExists
	out.ChargerEvent = plugged || unplugged

	s.ChargerExists = in.ChargerPresent
	s.BatteryExists = in.BatteryPresent
	s.ChargerType = ChargerUnknown
	if in.ChargerPresent && in.ChargerType != "" {
		s.ChargerType = in.ChargerType
	}

	sample(p, &s, in)

	switch {
	case unplugged:
		s.BatFull = false
		s.InRecharging = false
		s.ChargingState = StatePre
		s.TotalChargingTime = 0
		s.PluggedInTime = 0
		s.fullCounter = 0
		s.currentAvg.fill(0)
		s.ChargingCurrentMA = 0
	case plugged:
		s.currentAvg.fill(p.chargerCurrent(s.ChargerType))
		s.ChargingCurrentMA = s.currentAvg.avg()
		if s.UISOC == 100 {
			s.ChargingState = StateBatFull
			s.BatFull = true
			s.resetArmed = true
		}
	}

	// Notify codes describe the readings, so they see the state before the
	// guard acts on it.
	out.NotifyCode = notify(p, s)

	if s.ChargerExists {
		s.PluggedInTime += in.Elapsed
		out.GuardFailure = guard(p, &s)
		if out.GuardFailure == GuardNone && s.ChargingState != StateError {
			followCharger(p, &s, in)
		}
		if p.LongPlugInThreshold > 0 && s.PluggedInTime > p.LongPlugInThreshold {
			out.ChargeVoltageLimitMV = p.LongPlugInCVMV
		}
	}

	out.ResetFuelGauge = reconcile(p, &s)
	// A refresh request only ever applies to one tick.
	s.RefreshUISOC = false

	out.UISOC = s.UISOC
	out.ChargingState = s.ChargingState
	out.Health = health(p, s)
	out.Status = status(s)
	out.ChargingEnabled = s.ChargerExists && s.BatteryExists &&
		s.ChargingState != StateError && s.ChargingState != StateHold &&
		!s.UserDisabled

	if p.ThermalShutdown && s.TemperatureC >= p.CriticalTempC {
		out.Shutdown = true
		out.UISOC = 0
	}

	return s, out
}

// sample folds the reading into the measured fields.
func sample(p Params, s *State, in Reading) {
	soc := clampPercent(in.SOC)
	// The fuel gauge must not report a gain without a charger.
	if s.seenReading && !s.ChargerExists && soc > s.SOC {
		soc = s.SOC
	}
	s.SOC = soc

	size := p.AverageWindow
	if size < 1 {
		size = 1
	}
	if !s.seenReading || s.voltageAvg.size() != size {
		seed := in.BatVoltageMV
		if in.BatVoltageMV <= p.ZeroPercentVoltageMV && in.ZCVMV > 0 {
			seed = in.ZCVMV
		}
		s.voltageAvg = newWindow(size, seed)
		s.temperatureAvg = newWindow(size, in.TemperatureC)
		s.currentAvg = newWindow(size, in.ChargingCurrentMA)
	}
	s.seenReading = true

	s.BatVoltageMV = s.voltageAvg.push(in.BatVoltageMV)
	s.TemperatureC = s.temperatureAvg.push(in.TemperatureC)
	if s.TemperatureOverride != nil {
		s.TemperatureC = *s.TemperatureOverride
	}
	s.ChargingCurrentMA = s.currentAvg.push(in.ChargingCurrentMA)
	s.ChargerVoltageMV = in.ChargerVoltageMV
	s.ZCVMV = in.ZCVMV
}

// followCharger takes over what the charging collaborator reports once the
// guard has nothing to say.
func followCharger(p Params, s *State, in Reading) {
	if in.Full {
		if !s.BatFull {
			s.resetArmed = true
			s.TotalChargingTime = 0
		}
		s.BatFull = true
		s.InRecharging = false
		s.ChargingState = StateBatFull
		return
	}

	if in.Recharging && s.BatFull && !s.InRecharging {
		s.InRecharging = true
		s.currentAvg.fill(p.chargerCurrent(s.ChargerType))
	}

	switch in.ChargerPhase {
	case StatePre, StateCC, StateTopOff, StateBatFull:
		s.ChargingState = in.ChargerPhase
	}

	switch s.ChargingState {
	case StatePre, StateCC, StateTopOff:
		if !s.UserDisabled {
			s.TotalChargingTime += in.Elapsed
		}
	}
}
