package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battmon/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version",
		Annotations: map[string]string{annotationNoDaemon: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewChargingCommand() *cobra.Command {
	return newEnableDisableCommand(
		"charging",
		"Allow or stop charging",
		`Allow or stop charging.

Disabling charging is remembered in the config file, so it survives daemon
restarts. Enabling it only lifts your own block: the safety guard can still keep
charging off, for example when the battery is too hot.`,
		gBasic,
		func() (string, error) { return apiClient.SetCharging(true) },
		func() (string, error) { return apiClient.SetCharging(false) },
	)
}

func NewRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		Short:   "Move the displayed charge one step toward the real charge now",
		GroupID: gBasic,
		Long: `Move the displayed charge one step toward the real charge now.

When the fuel gauge drops, the displayed charge follows slowly. This skips the wait
for one step.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := apiClient.RefreshUISOC()
			if err != nil {
				return fmt.Errorf("failed to refresh ui soc: %w", err)
			}
			logResponse(ret)
			logrus.Info("successfully refreshed ui soc")
			return nil
		},
	}
}
