package battery

func health(p Params, s State) Health {
	switch {
	case !s.BatteryExists:
		return HealthUnknown
	case s.TemperatureC >= p.MaxChargeTempC:
		return HealthOverheat
	case s.TemperatureC < p.MinChargeTempC:
		return HealthCold
	case s.ChargerExists && s.ChargerVoltageMV >= p.ChargerMaxMV:
		return HealthOvervoltage
	default:
		return HealthGood
	}
}

func status(s State) SupplyStatus {
	switch {
	case s.Discharge == DischargeStart:
		return StatusCmdDischarging
	case s.ChargerExists && !s.BatteryExists:
		return StatusUnknown
	case s.ChargerExists && s.ChargingState != StateError:
		return StatusCharging
	default:
		return StatusNotCharging
	}
}
