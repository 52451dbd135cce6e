package battery

// guard runs the charging-safety checks in priority order. The first check
// that fails moves the state and is returned. It only makes sense with a
// charger present.
func guard(p Params, s *State) Guard {
	switch s.Discharge {
	case DischargeStart:
		fail(s)
		return GuardDischarge
	case DischargeResume:
		s.ChargingState = StatePre
		s.Discharge = DischargeNone
	}

	if !checkTemperature(p, s) {
		fail(s)
		return GuardTemperature
	}

	if s.ChargerVoltageMV >= p.ChargerMaxMV ||
		(p.ChargerMinEnabled && s.ChargerVoltageMV <= p.ChargerMinMV) {
		fail(s)
		return GuardChargerVoltage
	}

	if p.StopChargingInCall && s.CallActive && s.BatVoltageMV > p.CallHoldVoltageMV {
		s.ChargingState = StateHold
		return GuardCallState
	}

	if p.SafetyTimer && p.MaxChargingTime > 0 && s.TotalChargingTime >= p.MaxChargingTime {
		fail(s)
		return GuardChargingTime
	}

	if s.ChargingState == StateHold {
		s.ChargingState = StateCC
	}
	return GuardNone
}

// fail stops charging until something clears the error.
func fail(s *State) {
	s.ChargingState = StateError
	s.BatFull = false
	s.InRecharging = false
}

// checkTemperature walks the hysteresis and reports whether charging may go on.
func checkTemperature(p Params, s *State) bool {
	t := s.TemperatureC

	switch s.tempZone {
	case tempHigh:
		if t < p.MaxChargeTempC-p.HighRecoverDeltaC {
			s.tempZone = tempNormal
			s.ChargingState = StatePre
			return true
		}
		return false
	case tempLow:
		if !p.LowTempProtect || t >= p.MinChargeTempC+p.LowRecoverDeltaC {
			s.tempZone = tempNormal
			s.ChargingState = StatePre
			return true
		}
		return false
	}

	if t >= p.MaxChargeTempC {
		s.tempZone = tempHigh
		return false
	}
	if p.LowTempProtect && t < p.MinChargeTempC {
		s.tempZone = tempLow
		return false
	}
	return true
}
