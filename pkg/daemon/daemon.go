package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/config"
	"github.com/charlie0129/battmon/pkg/events"
	"github.com/charlie0129/battmon/pkg/power"
	"github.com/charlie0129/battmon/pkg/thermal"
)

var (
	supply  powerSupply
	conf    config.Config
	sseHub  = events.NewEventHub()
	vsensor atomic.Pointer[thermal.VirtualSensor]

	// daemonCtx is cancelled when the daemon shuts down. Long-lived
	// handlers like the event stream end with it.
	daemonCtx = context.Background()
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/ui-soc", getUISOC)
	router.GET("/charging-state", getChargingState)
	router.GET("/config", getConfig)
	router.GET("/battery-info", getBatteryInfo)
	router.GET("/thermal", getThermal)
	router.GET("/version", getVersion)
	router.GET("/events", getEvents)
	router.PUT("/charging", setCharging)
	router.PUT("/discharge", setDischarge)
	router.PUT("/call-state", setCallState)
	router.PUT("/refresh-ui-soc", refreshUISOC)
	router.PUT("/thermal-test", setThermalTest)
	router.PUT("/notify-test", setNotifyTest)

	return router
}

// setupThermal builds the virtual board sensor from the configured sources
// and hands it to the supply. No sources means the battery's own temperature
// attribute is used.
func setupThermal(s *power.Supply, c config.Config) error {
	srcs := c.ThermalSources()
	if len(srcs) == 0 {
		if old := vsensor.Swap(nil); old != nil {
			s.SetTemperatureSensor(nil)
			_ = old.Halt()
		}
		return nil
	}

	sources := make([]thermal.Source, 0, len(srcs))
	for _, src := range srcs {
		sources = append(sources, thermal.Source{
			Sensor: thermal.NewSysfsSensor(src.Path),
			Alpha:  src.Alpha,
			Offset: src.Offset,
			Weight: src.Weight,
		})
	}

	vs, err := thermal.NewVirtualSensor(sources...)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to set up virtual thermal sensor")
	}

	s.SetTemperatureSensor(vs)
	if old := vsensor.Swap(vs); old != nil {
		_ = old.Halt()
	}
	logrus.WithField("sensor", vs.String()).Info("using virtual thermal sensor for battery temperature")

	return nil
}

// restoreChargingOnExit hands charging back to the driver, unless the last
// tick stopped it because the battery was too hot or too cold.
func restoreChargingOnExit() {
	tickLock.Lock()
	out := lastOutputs
	temp := state.TemperatureC
	tickLock.Unlock()

	if out.GuardFailure == battery.GuardTemperature || out.Shutdown {
		logrus.WithFields(logrus.Fields{
			"chargingState": out.ChargingState,
			"temperatureC":  temp,
		}).Warn("battery temperature is out of range, leaving charging disabled on exit")
		return
	}

	if err := supply.EnableCharging(); err != nil {
		logrus.Errorf("failed to re-enable charging before exiting: %v", err)
	}
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")
	loopInterval = conf.LoopInterval()

	// Open the power supply class for read/writing
	s := power.New(power.Options{
		Root:    conf.PowerSupplyRoot(),
		Battery: conf.BatterySupply(),
		Charger: conf.ChargerSupply(),
	})
	if err := s.Open(); err != nil {
		logrus.Fatal(err)
	}
	supply = s

	if err := setupThermal(s, conf); err != nil {
		logrus.Fatal(err)
	}

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			tickLock.Lock()
			err := conf.Load()
			if err == nil {
				err = setupThermal(s, conf)
			}
			tickLock.Unlock()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded")
			if conf.LoopInterval() != loopInterval {
				logrus.Warnf("loop interval changes take effect after a restart")
			}
			requestTick()
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	daemonCtx = ctx

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(stop)

	// Remove a socket left behind by a previous run.
	if err := os.Remove(unixSocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Fatal(err)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	go watchCharger(ctx)

	if n, err := newLogindNotifier(); err != nil {
		logrus.Warnf("system sleep notifications are not available: %v", err)
	} else {
		defer func() {
			if err := n.Close(); err != nil {
				logrus.Errorf("failed to stop listening sleep notifications: %v", err)
			}
		}()
		go listenSleepNotifications(ctx, n)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		logrus.Debugln("monitor loop starts")

		infiniteLoop(ctx)

		logrus.Debugln("monitor loop stopped")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping monitor loop")
	stop()
	<-loopDone

	restoreChargingOnExit()

	if vs := vsensor.Load(); vs != nil {
		_ = vs.Halt()
	}

	logrus.Info("closing power supply connection")
	err = supply.Close()
	if err != nil {
		logrus.Errorf("failed to close power supply connection: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
