package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func NewDischargeCommand() *cobra.Command {
	return newEnableDisableCommand(
		"discharge",
		"Force the battery to discharge while plugged in",
		`Force the battery to discharge while plugged in.

Enabling this stops charging until it is disabled again. Disabling it resumes
normal charging.`,
		gAdvanced,
		func() (string, error) { return apiClient.SetDischarge(true) },
		func() (string, error) { return apiClient.SetDischarge(false) },
	)
}

func NewCallStateCommand() *cobra.Command {
	return newEnableDisableCommand(
		"call-state",
		"Tell the daemon whether a call is active",
		`Tell the daemon whether a call is active.

When stopChargingInCall is set in the config, charging is held during a call once
the battery voltage is above callHoldVoltageMV.`,
		gAdvanced,
		func() (string, error) { return apiClient.SetCallState(true) },
		func() (string, error) { return apiClient.SetCallState(false) },
	)
}

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		Short:   "Print daemon events as they happen",
		GroupID: gAdvanced,
		Long: `Print daemon events as they happen.

Each event is printed on one line as its name followed by its JSON payload. Stop
with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ch, err := apiClient.SubscribeEvents(ctx)
			if err != nil {
				return err
			}

			for ev := range ch {
				cmd.Printf("%s %s\n", ev.Name, string(ev.Data))
			}

			if ctx.Err() == nil {
				return fmt.Errorf("daemon closed the event stream")
			}
			return nil
		},
	}
}
