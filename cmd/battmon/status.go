package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/client"
	"github.com/charlie0129/battmon/pkg/powerinfo"
	"github.com/charlie0129/battmon/pkg/thermal"
	"github.com/charlie0129/battmon/pkg/types"
)

type statusData struct {
	status    *types.Status
	batteries []powerinfo.Battery
	thermal   *thermal.Status
}

// fetchStatusData gathers all data required for the status command from the daemon.
// Battery and thermal info are optional.
func fetchStatusData() (*statusData, error) {
	st, err := apiClient.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	bats, err := apiClient.GetBatteryInfo()
	if err != nil {
		logrus.Debugf("failed to get battery info: %v", err)
	}

	th, err := apiClient.GetThermal()
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		logrus.Debugf("failed to get thermal status: %v", err)
	}

	return &statusData{
		status:    st,
		batteries: bats,
		thermal:   th,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	jsonOutput := false

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of battmon",
		Long:    `Get battmon status, battery info, and configuration.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if jsonOutput {
				return printStatusJSON(cmd, data)
			}

			printStatus(cmd, data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")

	return cmd
}

func printStatus(cmd *cobra.Command, data *statusData) {
	s := data.status.State
	out := data.status.Outputs
	p := data.status.Config.Params

	// Charging status.
	cmd.Println(bold("Charging status:"))
	cmd.Printf("  Charger: %s\n", chargerText(s))
	cmd.Println("  Charging enabled: " + bool2Text(out.ChargingEnabled))
	cmd.Printf("  Charging state: %s\n", chargingStateText(out.ChargingState))
	if out.GuardFailure != battery.GuardNone {
		cmd.Printf("    Stopped by the %s guard.\n", color.RedString(string(out.GuardFailure)))
	}
	if s.UserDisabled {
		cmd.Println("    Charging is disabled by you. Run `battmon charging enable' to allow it again.")
	}
	if s.Discharge == battery.DischargeStart {
		cmd.Println("    Forced discharge is active. Run `battmon discharge disable' to resume charging.")
	}
	if s.ChargerExists {
		cmd.Printf("  Charging time: %s\n", bold("%s", s.TotalChargingTime.Round(time.Second)))
		cmd.Printf("  Plugged in for: %s\n", bold("%s", s.PluggedInTime.Round(time.Second)))
	}
	if out.ChargeVoltageLimitMV > 0 {
		cmd.Printf("  Charge voltage limit: %s\n", bold("%d mV", out.ChargeVoltageLimitMV))
	}

	cmd.Println()

	// Battery Info.
	cmd.Println(bold("Battery status:"))
	if !s.BatteryExists {
		cmd.Println("  " + color.RedString("No battery detected."))
	}
	if s.Initialized() {
		cmd.Printf("  Charge: %s (fuel gauge %d%%)\n", bold("%d%%", out.UISOC), s.SOC)
	} else {
		cmd.Printf("  Charge: %s (fuel gauge %d%%)\n", bold("unknown"), s.SOC)
	}
	cmd.Printf("  Status: %s\n", bold("%s", out.Status))
	cmd.Printf("  Health: %s\n", healthText(out.Health))
	cmd.Printf("  Voltage: %s (open circuit %d mV)\n", bold("%d mV", s.BatVoltageMV), s.ZCVMV)
	cmd.Printf("  Current: %s\n", bold("%d mA", s.ChargingCurrentMA))
	temp := bold("%d°C", s.TemperatureC)
	if s.TemperatureOverride != nil {
		temp += color.YellowString(" (thermal test mode)")
	}
	cmd.Printf("  Temperature: %s, zone %s\n", temp, data.status.TemperatureZone)
	if out.NotifyCode != 0 {
		cmd.Printf("  Notify: %s\n", color.YellowString(out.NotifyCode.String()))
	}
	if out.Shutdown {
		cmd.Println("  " + color.New(color.Bold, color.FgRed).Sprint("Battery temperature is critical, the system should power off."))
	}

	for i, b := range data.batteries {
		cmd.Printf("  System battery %d: %s, %s, health %s\n", i,
			bold("%.0f%%", b.Percent()), b.State, bold("%.0f%%", b.HealthPercent()))
		cmd.Printf("    Charge rate: %s\n", rateText(b.ChargeRate))
	}

	if data.thermal != nil {
		cmd.Println()
		cmd.Println(bold("Board temperature:"))
		cmd.Printf("  Virtual sensor: %s\n", bold("%.1f°C", float64(data.thermal.MilliCelsius)/1000))
		for _, src := range data.thermal.Sources {
			line := fmt.Sprintf("    %s: %.1f°C (raw %.1f°C, weight %d)", src.Name,
				float64(src.FilteredMC)/1000, float64(src.RawMC)/1000, src.Weight)
			if src.Error != "" {
				line += " " + color.RedString(src.Error)
			}
			cmd.Println(line)
		}
	}

	cmd.Println()

	// Config.
	cmd.Println(bold("Battery configuration:"))
	cmd.Printf("  Charge temperature: %s\n", bold("%d°C to %d°C", p.MinChargeTempC, p.MaxChargeTempC))
	cmd.Printf("  Charger voltage: %s\n", bold("%d mV to %d mV", p.ChargerMinMV, p.ChargerMaxMV))
	if p.SafetyTimer {
		cmd.Printf("  Safety timer: %s\n", bold("%s", p.MaxChargingTime))
	} else {
		cmd.Printf("  Safety timer: %s\n", bool2Text(false))
	}
	cmd.Printf("  Stop charging in call: %s\n", bool2Text(p.StopChargingInCall))
	cmd.Printf("  Thermal shutdown: %s\n", bool2Text(p.ThermalShutdown))
	cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(data.status.Config.AllowNonRootAccess))
}

func chargerText(s battery.State) string {
	if !s.ChargerExists {
		return bold("not plugged in")
	}
	return color.GreenString("plugged in") + fmt.Sprintf(" (%s, %d mV)", s.ChargerType, s.ChargerVoltageMV)
}

func chargingStateText(cs battery.ChargingState) string {
	switch cs {
	case battery.StateError:
		return color.New(color.Bold, color.FgRed).Sprint(string(cs))
	case battery.StateHold:
		return color.New(color.Bold, color.FgYellow).Sprint(string(cs))
	case battery.StateBatFull:
		return color.New(color.Bold, color.FgGreen).Sprint(string(cs))
	default:
		return bold("%s", cs)
	}
}

func healthText(h battery.Health) string {
	if h == battery.HealthGood {
		return color.New(color.Bold, color.FgGreen).Sprint(string(h))
	}
	return color.New(color.Bold, color.FgRed).Sprint(string(h))
}

// Show charge rate in Watts with sign (+ charging, - discharging) and bright color (bold)
func rateText(mw float64) string {
	watts := mw / 1e3
	switch {
	case watts > 0:
		return color.New(color.Bold, color.FgGreen).Sprintf("%+.1f W", watts)
	case watts < 0:
		return color.New(color.Bold, color.FgRed).Sprintf("%+.1f W", watts)
	default:
		return bold("%+.1f W", watts)
	}
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
