package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/power"
	daemonutils "github.com/charlie0129/battmon/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false

	cmd := &cobra.Command{
		Use:         "install",
		Short:       "Install battmon (system-wide)",
		GroupID:     gInstallation,
		Annotations: map[string]string{annotationNoDaemon: "true"},
		Long: `Install battmon daemon as a systemd service (system-wide).

This makes battmon run in the background and automatically start on boot. You must run this command as root.

By default, only root user is allowed to access the battmon daemon for security reasons. As a result, you will need to run battmon client as root to change charging, e.g. disabling it. If you want to allow non-root users, i.e., you, to access the daemon, you can use the --allow-non-root-access flag, so you don't have to use sudo every time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the battmon daemon.")
			} else {
				logrus.Info("only root user is allowed to access the battmon daemon.")
			}

			// The daemon reads the config as soon as systemd starts it.
			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = daemonutils.Install(configPath, unixSocketPath)
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("systemd will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run `battmon install' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access battmon daemon.")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	noResetCharging := false

	cmd := &cobra.Command{
		Use:         "uninstall",
		Short:       "Uninstall battmon (system-wide)",
		GroupID:     gInstallation,
		Annotations: map[string]string{annotationNoDaemon: "true"},
		Long: `Uninstall battmon daemon from systemd (system-wide).

This stops battmon and removes its systemd unit.

You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			if !noResetCharging {
				logrus.Infof("re-enabling charging")

				conf, err := config.NewFile(configPath)
				if err != nil {
					return err
				}

				s := power.New(power.Options{
					Root:    conf.PowerSupplyRoot(),
					Battery: conf.BatterySupply(),
					Charger: conf.ChargerSupply(),
				})
				if err := s.Open(); err != nil {
					return fmt.Errorf("failed to open power supply: %v", err)
				}

				if err := s.EnableCharging(); err != nil {
					return fmt.Errorf("failed to enable charging: %v", err)
				}

				if err := s.SetChargeVoltageLimit(0); err != nil {
					return fmt.Errorf("failed to reset charge voltage limit: %v", err)
				}

				if err := s.Close(); err != nil {
					return fmt.Errorf("failed to close power supply: %v", err)
				}
			}

			fmt.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `battmon' again. If you want a complete uninstall, you can remove both config file and battmon itself manually.\n", configPath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&noResetCharging, "no-reset-charging", false, "Do not re-enable charging after uninstalling.")

	return cmd
}
