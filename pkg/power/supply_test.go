package power

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/distatus/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bat "github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/thermal"
)

func chargingPrefill() map[string]string {
	return map[string]string{
		"battery/present":                            "1",
		"battery/voltage_now":                        "3912000",
		"battery/voltage_ocv":                        "3850000",
		"battery/current_now":                        "812000",
		"battery/temp":                               "253",
		"battery/capacity":                           "64",
		"battery/status":                             "Charging",
		"battery/charge_type":                        "Fast",
		"battery/charge_behaviour":                   "[auto] inhibit-charge force-discharge",
		"battery/constant_charge_voltage_max":        "4350000",
		"battery/constant_charge_voltage_max_design": "4350000",
		"charger/online":                             "1",
		"charger/voltage_now":                        "5012000",
		"charger/usb_type":                           "Unknown SDP [DCP] CDP",
	}
}

func TestSupply_Read(t *testing.T) {
	s, _ := NewMock(chargingPrefill())

	r, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, bat.Reading{
		SOC:               64,
		BatVoltageMV:      3912,
		ChargerVoltageMV:  5012,
		TemperatureC:      25,
		ZCVMV:             3850,
		ChargingCurrentMA: 812,
		ChargerPresent:    true,
		BatteryPresent:    true,
		ChargerType:       bat.ChargerStandard,
		ChargerPhase:      bat.StateCC,
	}, r)
}

func TestSupply_ReadKeepsPreviousOnFailure(t *testing.T) {
	s, conn := NewMock(chargingPrefill())
	_, err := s.Read()
	require.NoError(t, err)

	require.NoError(t, conn.Write("battery/voltage_now", "garbage"))
	require.NoError(t, conn.Write("battery/capacity", "65"))

	r, err := s.Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batVoltage")
	assert.Equal(t, 3912, r.BatVoltageMV)
	assert.Equal(t, 65, r.SOC)
}

func TestSupply_ReadOptionalAttributes(t *testing.T) {
	prefill := chargingPrefill()
	delete(prefill, "battery/voltage_ocv")
	delete(prefill, "battery/present")
	delete(prefill, "charger/usb_type")
	delete(prefill, "charger/voltage_now")
	s, _ := NewMock(prefill)

	r, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, 3912, r.ZCVMV)
	assert.True(t, r.BatteryPresent)
	assert.Equal(t, bat.ChargerStandard, r.ChargerType)
	assert.Equal(t, 5000, r.ChargerVoltageMV)
}

func TestSupply_ReadUnplugged(t *testing.T) {
	prefill := chargingPrefill()
	prefill["charger/online"] = "0"
	prefill["battery/status"] = "Discharging"
	s, _ := NewMock(prefill)

	r, err := s.Read()
	require.NoError(t, err)
	assert.False(t, r.ChargerPresent)
	assert.Zero(t, r.ChargerVoltageMV)
	assert.Equal(t, bat.ChargerUnknown, r.ChargerType)
	assert.Empty(t, r.ChargerPhase)
}

func TestSupply_TemperatureSensor(t *testing.T) {
	s, _ := NewMock(chargingPrefill())
	s.SetTemperatureSensor(thermal.FixedSensor(thermal.FromMilliCelsius(41700)))

	r, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, 41, r.TemperatureC)

	s.SetTemperatureSensor(nil)
	r, err = s.Read()
	require.NoError(t, err)
	assert.Equal(t, 25, r.TemperatureC)
}

func TestSupply_ChargerReport(t *testing.T) {
	tests := []struct {
		status, chargeType, recharging string
		want                           ChargerReport
	}{
		{"Full", "", "", ChargerReport{Phase: bat.StateBatFull, Full: true}},
		{"Charging", "Trickle", "", ChargerReport{Phase: bat.StatePre}},
		{"Charging", "Taper", "", ChargerReport{Phase: bat.StateTopOff}},
		{"Charging", "Fast", "1", ChargerReport{Phase: bat.StateCC, Recharging: true}},
		{"Not charging", "", "0", ChargerReport{}},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.chargeType, func(t *testing.T) {
			prefill := map[string]string{"battery/status": tt.status}
			if tt.chargeType != "" {
				prefill["battery/charge_type"] = tt.chargeType
			}
			if tt.recharging != "" {
				prefill["battery/recharging"] = tt.recharging
			}
			s, _ := NewMock(prefill)

			got, err := s.GetChargerReport()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupply_Charging(t *testing.T) {
	s, conn := NewMock(chargingPrefill())

	enabled, err := s.IsChargingEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.DisableCharging())
	enabled, err = s.IsChargingEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, s.EnableCharging())
	require.NoError(t, s.SetChargeVoltageLimit(4100))
	mv, err := s.GetChargeVoltageLimit()
	require.NoError(t, err)
	assert.Equal(t, 4100, mv)

	require.NoError(t, s.SetChargeVoltageLimit(0))
	assert.Equal(t, []string{
		"battery/charge_behaviour=inhibit-charge",
		"battery/charge_behaviour=auto",
		"battery/constant_charge_voltage_max=4100000",
		"battery/constant_charge_voltage_max=4350000",
	}, conn.Writes())
}

func TestSupply_ResetFuelGauge(t *testing.T) {
	s, conn := NewMock(chargingPrefill())
	require.NoError(t, s.ResetFuelGauge())
	assert.Empty(t, conn.Writes())

	require.NoError(t, conn.Write("battery/fg_reset", "0"))
	require.NoError(t, s.ResetFuelGauge())
	assert.Contains(t, conn.Writes(), "battery/fg_reset=1")
}

func TestSupply_SOCFallback(t *testing.T) {
	old := getAllBatteries
	defer func() { getAllBatteries = old }()
	getAllBatteries = func() ([]*battery.Battery, error) {
		return []*battery.Battery{{Current: 30000, Full: 40000, Design: 50000}}, nil
	}

	prefill := chargingPrefill()
	delete(prefill, "battery/capacity")
	s, _ := NewMock(prefill)

	soc, err := s.GetSOC()
	require.NoError(t, err)
	assert.Equal(t, 75, soc)

	infos, err := SystemBatteries()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.InDelta(t, 80.0, infos[0].HealthPercent(), 0.001)

	getAllBatteries = func() ([]*battery.Battery, error) { return nil, nil }
	_, err = s.GetSOC()
	assert.Error(t, err)
	_, err = SystemBatteries()
	assert.Error(t, err)
}

func TestSelected(t *testing.T) {
	assert.Equal(t, "DCP", selected("Unknown SDP [DCP] CDP"))
	assert.Equal(t, "auto", selected("auto"))
	assert.Equal(t, "inhibit-charge", selected("auto [inhibit-charge]"))
}

func TestChargerTypeOf(t *testing.T) {
	assert.Equal(t, bat.ChargerStdHost, chargerTypeOf("SDP"))
	assert.Equal(t, bat.ChargerHost, chargerTypeOf("CDP"))
	assert.Equal(t, bat.ChargerStandard, chargerTypeOf("DCP"))
	assert.Equal(t, bat.ChargerUnknown, chargerTypeOf("Unknown"))
	assert.Equal(t, bat.ChargerNonStandard, chargerTypeOf("ACA"))
}

func TestSysfsConnection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "battery"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "battery", "capacity"), []byte("42\n"), 0o644))

	c := NewSysfsConnection(root)
	require.NoError(t, c.Open())

	v, err := c.Read("battery/capacity")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	require.NoError(t, c.Write("battery/capacity", "43"))
	v, err = c.Read("battery/capacity")
	require.NoError(t, err)
	assert.Equal(t, "43", v)

	_, err = c.Read("battery/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Error(t, c.Write("battery/missing", "1"))

	assert.Error(t, NewSysfsConnection(filepath.Join(root, "nope")).Open())
}
