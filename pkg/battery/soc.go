package battery

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// reconcile moves UISOC one step toward SOC using whichever regime applies
// and reports whether the fuel gauge should be reset.
func reconcile(p Params, s *State) (reset bool) {
	if s.ChargerExists && s.ChargingState != StateError && !s.BatteryExists {
		// No battery to report on.
		s.UISOC = 0
		s.syncCounter = 0
		return false
	}

	if s.UISOC == UISOCUninitialized {
		s.UISOC = clampPercent(s.SOC)
		s.syncCounter = 0
		return false
	}

	var handled, capAt99 bool
	lowVoltage := s.BatVoltageMV <= p.ZeroPercentVoltageMV

	switch {
	case s.ChargerExists && s.ChargingState != StateError && s.BatteryExists:
		if lowVoltage {
			handled, reset = trackZeroPercent(s)
		} else {
			handled, reset = trackFull(p, s)
			capAt99 = !s.BatFull
		}
	default:
		if lowVoltage {
			handled, reset = trackZeroPercent(s)
		} else {
			handled, reset = trackNPercent(p, s)
		}
	}

	if !handled {
		syncToReal(p, s)
	}
	if capAt99 && s.UISOC > 99 {
		s.UISOC = 99
	}
	s.UISOC = clampPercent(s.UISOC)
	return reset
}

// trackZeroPercent walks UISOC down to 0 one step per tick no matter what
// the fuel gauge says.
func trackZeroPercent(s *State) (handled, reset bool) {
	if s.UISOC > 0 {
		s.UISOC--
	} else {
		s.UISOC = 0
	}
	s.fullCounter = 0
	s.nPercentCount = 0
	s.syncCounter = 0
	return true, true
}

// trackFull pulls UISOC up to 100 once the charger has reported full.
func trackFull(p Params, s *State) (handled, reset bool) {
	if !s.BatFull {
		if s.UISOC > 99 {
			s.UISOC = 99
		}
		s.fullCounter = 0
		return false, false
	}

	if s.InRecharging {
		if s.UISOC > 100 {
			s.UISOC = 100
		}
		s.fullCounter = 0
		return false, false
	}

	if s.UISOC >= 100 {
		s.UISOC = 100
		s.fullCounter = 0
		if s.resetArmed && s.ChargingState == StateBatFull {
			s.resetArmed = false
			return true, true
		}
		return true, false
	}

	s.fullCounter++
	if s.fullCounter >= p.fullTicks() {
		s.fullCounter = 0
		s.UISOC++
	}
	return true, false
}

// trackNPercent holds UISOC at the checkpoint until the open-circuit voltage
// says the battery really is that low.
func trackNPercent(p Params, s *State) (handled, reset bool) {
	if p.NPercentCheckpoint <= 0 {
		return false, false
	}

	switch {
	case s.ZCVMV <= p.NPercentZCVMV && s.UISOC > p.NPercentCheckpoint:
		s.nPercentCount++
		if s.nPercentCount >= p.nPercentTicks() {
			s.nPercentCount = 0
			s.UISOC--
			return true, true
		}
		return true, false
	case s.ZCVMV > p.NPercentZCVMV && s.UISOC == p.NPercentCheckpoint:
		s.nPercentCount = 0
		return true, true
	}

	s.nPercentCount = 0
	return false, false
}

// syncToReal converges UISOC on SOC: at most one step down every
// SyncToRealTicks ticks, one step up per tick while charging.
func syncToReal(p Params, s *State) {
	if s.UISOC == UISOCUninitialized {
		s.UISOC = s.SOC
		s.syncCounter = 0
		return
	}

	switch {
	case s.UISOC > s.SOC && s.UISOC != 1:
		if s.UISOC-s.SOC <= 1 {
			s.UISOC = s.SOC
			s.syncCounter = 0
			break
		}
		s.syncCounter++
		if p.ImmediateSync || s.RefreshUISOC || s.syncCounter >= p.syncTicks() {
			s.UISOC--
			s.syncCounter = 0
		}
	case s.UISOC < s.SOC && s.ChargerExists && s.ChargingState != StateError:
		s.syncCounter = 0
		if s.SOC-s.UISOC > 1 {
			s.UISOC++
		} else {
			s.UISOC = s.SOC
		}
	default:
		s.syncCounter = 0
	}

	// Only 0% tracking is allowed to show an empty battery.
	if s.UISOC <= 0 {
		s.UISOC = 1
	}
	s.UISOC = clampPercent(s.UISOC)
}
