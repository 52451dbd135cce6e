package battery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTick_OverTemperatureErrorsSameTick(t *testing.T) {
	p := DefaultParams()
	p.MaxChargeTempC = 60
	in := chargingReading(50)
	in.TemperatureC = 65

	s, out := Tick(p, NewState(), in)
	assert.Equal(t, StateError, s.ChargingState)
	assert.Equal(t, StateError, out.ChargingState)
	assert.False(t, out.ChargingEnabled)
	assert.Equal(t, GuardTemperature, out.GuardFailure)
	assert.Equal(t, "high", s.TemperatureZone())
}

func TestTick_TemperatureHysteresis(t *testing.T) {
	p := DefaultParams()
	p.AverageWindow = 1
	p.MaxChargeTempC = 50
	p.HighRecoverDeltaC = 3

	temps := []struct {
		temp int
		want ChargingState
	}{
		{25, StateCC},
		{50, StateError},
		{49, StateError},
		{47, StateError},
		{46, StateCC},
		{50, StateError},
	}

	s := NewState()
	for i, tt := range temps {
		in := chargingReading(50)
		in.TemperatureC = tt.temp
		var out Outputs
		s, out = Tick(p, s, in)
		assert.Equal(t, tt.want, s.ChargingState, "step %d (%d°C)", i, tt.temp)
		assert.Equal(t, tt.want != StateError, out.ChargingEnabled, "step %d", i)
	}
}

func TestTick_LowTemperatureHysteresis(t *testing.T) {
	p := DefaultParams()
	p.AverageWindow = 1
	p.MinChargeTempC = 0
	p.LowRecoverDeltaC = 6

	temps := []struct {
		temp int
		want ChargingState
	}{
		{10, StateCC},
		{-1, StateError},
		{3, StateError},
		{5, StateError},
		{6, StateCC},
	}

	s := NewState()
	for i, tt := range temps {
		in := chargingReading(50)
		in.TemperatureC = tt.temp
		s, _ = Tick(p, s, in)
		assert.Equal(t, tt.want, s.ChargingState, "step %d (%d°C)", i, tt.temp)
	}

	p.LowTempProtect = false
	in := chargingReading(50)
	in.TemperatureC = -10
	s, _ = Tick(p, s, in)
	assert.Equal(t, StateCC, s.ChargingState)
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name      string
		params    func(p *Params)
		state     func(s *State)
		want      Guard
		wantState ChargingState
	}{
		{
			name:      "all clear",
			want:      GuardNone,
			wantState: StateCC,
		},
		{
			name:      "discharge command",
			state:     func(s *State) { s.Discharge = DischargeStart },
			want:      GuardDischarge,
			wantState: StateError,
		},
		{
			name: "resume clears error and continues",
			state: func(s *State) {
				s.Discharge = DischargeResume
				s.ChargingState = StateError
			},
			want:      GuardNone,
			wantState: StatePre,
		},
		{
			name: "discharge wins over temperature",
			state: func(s *State) {
				s.Discharge = DischargeStart
				s.TemperatureC = 70
			},
			want:      GuardDischarge,
			wantState: StateError,
		},
		{
			name:      "charger over voltage",
			state:     func(s *State) { s.ChargerVoltageMV = 6500 },
			want:      GuardChargerVoltage,
			wantState: StateError,
		},
		{
			name:      "charger under voltage",
			state:     func(s *State) { s.ChargerVoltageMV = 4400 },
			want:      GuardChargerVoltage,
			wantState: StateError,
		},
		{
			name:      "charger under voltage check disabled",
			params:    func(p *Params) { p.ChargerMinEnabled = false },
			state:     func(s *State) { s.ChargerVoltageMV = 4000 },
			want:      GuardNone,
			wantState: StateCC,
		},
		{
			name:   "call active above hold voltage",
			params: func(p *Params) { p.StopChargingInCall = true },
			state: func(s *State) {
				s.CallActive = true
				s.BatVoltageMV = 4100
			},
			want:      GuardCallState,
			wantState: StateHold,
		},
		{
			name:   "call active below hold voltage",
			params: func(p *Params) { p.StopChargingInCall = true },
			state: func(s *State) {
				s.CallActive = true
				s.BatVoltageMV = 4000
			},
			want:      GuardNone,
			wantState: StateCC,
		},
		{
			name: "hold returns to cc",
			state: func(s *State) {
				s.ChargingState = StateHold
			},
			want:      GuardNone,
			wantState: StateCC,
		},
		{
			name:      "safety timer",
			state:     func(s *State) { s.TotalChargingTime = 12 * time.Hour },
			want:      GuardChargingTime,
			wantState: StateError,
		},
		{
			name:      "safety timer disabled",
			params:    func(p *Params) { p.SafetyTimer = false },
			state:     func(s *State) { s.TotalChargingTime = 13 * time.Hour },
			want:      GuardNone,
			wantState: StateCC,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			if tt.params != nil {
				tt.params(&p)
			}
			s := NewState()
			s.ChargerExists = true
			s.ChargingState = StateCC
			s.BatVoltageMV = 3900
			s.ChargerVoltageMV = 5000
			s.TemperatureC = 25
			if tt.state != nil {
				tt.state(&s)
			}

			got := guard(p, &s)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantState, s.ChargingState)
		})
	}
}

func TestTick_ErrorIsSticky(t *testing.T) {
	p := DefaultParams()
	s, _ := Tick(p, NewState(), chargingReading(50))

	bad := chargingReading(50)
	bad.ChargerVoltageMV = 7000
	s, out := Tick(p, s, bad)
	require.Equal(t, StateError, s.ChargingState)
	require.False(t, out.ChargingEnabled)
	assert.True(t, out.NotifyCode.Has(NotifyChargerOverVoltage))
	assert.Equal(t, HealthOvervoltage, out.Health)

	// Voltage back to normal is not enough.
	s, out = Tick(p, s, chargingReading(50))
	assert.Equal(t, StateError, s.ChargingState)
	assert.False(t, out.ChargingEnabled)

	// Unplugging is.
	s, _ = Tick(p, s, batteryOnlyReading(50))
	s, out = Tick(p, s, chargingReading(50))
	assert.Equal(t, StateCC, s.ChargingState)
	assert.True(t, out.ChargingEnabled)
}

func TestTick_DischargeCommand(t *testing.T) {
	p := DefaultParams()
	s, _ := Tick(p, NewState(), chargingReading(50))

	s.Discharge = DischargeStart
	s, out := Tick(p, s, chargingReading(50))
	assert.Equal(t, StateError, s.ChargingState)
	assert.Equal(t, StatusCmdDischarging, out.Status)
	assert.False(t, out.ChargingEnabled)

	s.Discharge = DischargeResume
	s, out = Tick(p, s, chargingReading(50))
	assert.Equal(t, DischargeNone, s.Discharge)
	assert.Equal(t, StateCC, s.ChargingState)
	assert.True(t, out.ChargingEnabled)
}

func TestTick_SafetyTimerTrips(t *testing.T) {
	p := DefaultParams()
	p.MaxChargingTime = 30 * time.Second

	s := NewState()
	var out Outputs
	for i := 0; i < 3; i++ {
		s, out = Tick(p, s, chargingReading(50))
		require.True(t, out.ChargingEnabled, "tick %d", i)
	}
	assert.Equal(t, 30*time.Second, s.TotalChargingTime)

	s, out = Tick(p, s, chargingReading(50))
	assert.Equal(t, GuardChargingTime, out.GuardFailure)
	assert.Equal(t, StateError, s.ChargingState)
	assert.True(t, out.NotifyCode.Has(NotifyChargingOverTime))
}

func TestTick_FullResetsChargingTime(t *testing.T) {
	p := DefaultParams()
	s, _ := Tick(p, NewState(), chargingReading(90))
	s, _ = Tick(p, s, chargingReading(90))
	require.NotZero(t, s.TotalChargingTime)

	full := chargingReading(100)
	full.Full = true
	s, _ = Tick(p, s, full)
	assert.Zero(t, s.TotalChargingTime)
	assert.True(t, s.BatFull)
	assert.True(t, s.ResetArmed())
}

func TestTick_RechargeReleasesFullTracking(t *testing.T) {
	p := DefaultParams()
	p.ImmediateSync = true
	s, _ := Tick(p, NewState(), batteryOnlyReading(100))

	full := chargingReading(100)
	full.Full = true
	s, _ = Tick(p, s, full)
	require.Equal(t, 100, s.UISOC)

	recharge := chargingReading(95)
	recharge.Recharging = true
	s, _ = Tick(p, s, recharge)
	assert.True(t, s.InRecharging)
	assert.True(t, s.BatFull)
	assert.Equal(t, 99, s.UISOC)
}
