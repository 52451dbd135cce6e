package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battmon/pkg/battery"
)

func NewThermalTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "thermal-test <celsius>|clear",
		Short:   "Force the battery temperature the daemon sees",
		GroupID: gTesting,
		Long: `Force the battery temperature the daemon sees.

This exercises the temperature guard and thermal shutdown without heating the
battery. Use 'clear' to go back to the measured temperature.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var t *int
			if args[0] != "clear" {
				v, err := parseIntArg(args, "temperature")
				if err != nil {
					return err
				}
				t = &v
			}

			ret, err := apiClient.SetThermalTest(t)
			if err != nil {
				return fmt.Errorf("failed to set thermal test mode: %w", err)
			}
			logResponse(ret)

			if t == nil {
				logrus.Info("successfully cleared thermal test mode")
			} else {
				logrus.Infof("successfully forced battery temperature to %d°C", *t)
			}
			return nil
		},
	}
}

func NewNotifyTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "notify-test <code>",
		Short:   "Force a notify code",
		GroupID: gTesting,
		Long: fmt.Sprintf(`Force a notify code.

Codes 1 to %d each raise one notify bit, 0 goes back to normal.`, battery.MaxNotifyTestMode),
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			mode, err := parseIntArg(args, "code")
			if err != nil {
				return err
			}
			if mode < 0 || mode > battery.MaxNotifyTestMode {
				return fmt.Errorf("code must be between 0 and %d, got %d", battery.MaxNotifyTestMode, mode)
			}

			ret, err := apiClient.SetNotifyTest(mode)
			if err != nil {
				return fmt.Errorf("failed to set notify test mode: %w", err)
			}
			logResponse(ret)
			logrus.Infof("successfully set notify test mode to %d", mode)
			return nil
		},
	}
}
