package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/power"
	"github.com/charlie0129/battmon/pkg/types"
	"github.com/charlie0129/battmon/pkg/version"
)

// systemBatteries is replaced in tests.
var systemBatteries = power.SystemBatteries

func abortWith(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

func getStatus(c *gin.Context) {
	tickLock.Lock()
	st := types.Status{
		State:           state,
		Outputs:         lastOutputs,
		Config:          types.NewConfigInfo(conf),
		LastTick:        lastTickTime,
		TemperatureZone: state.TemperatureZone(),
		ResetArmed:      state.ResetArmed(),
		Version:         version.Version,
	}
	tickLock.Unlock()

	c.IndentedJSON(http.StatusOK, st)
}

func getUISOC(c *gin.Context) {
	tickLock.Lock()
	uiSoc := lastOutputs.UISOC
	initialized := state.Initialized()
	tickLock.Unlock()

	if !initialized {
		abortWith(c, http.StatusServiceUnavailable, errors.New("ui soc is not initialized yet"))
		return
	}

	c.IndentedJSON(http.StatusOK, uiSoc)
}

func getChargingState(c *gin.Context) {
	tickLock.Lock()
	cs := state.ChargingState
	tickLock.Unlock()

	c.IndentedJSON(http.StatusOK, cs)
}

func getConfig(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, types.NewConfigInfo(conf))
}

func getBatteryInfo(c *gin.Context) {
	batteries, err := systemBatteries()
	if err != nil {
		logrus.Errorf("getBatteryInfo failed: %v", err)
		abortWith(c, http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, batteries)
}

func getThermal(c *gin.Context) {
	vs := vsensor.Load()
	if vs == nil {
		abortWith(c, http.StatusNotFound, errors.New("no thermal sources configured"))
		return
	}

	c.IndentedJSON(http.StatusOK, vs.Status())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func setCharging(c *gin.Context) {
	var enabled bool
	if err := c.BindJSON(&enabled); err != nil {
		abortWith(c, http.StatusBadRequest, err)
		return
	}

	conf.SetChargingDisabled(!enabled)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		abortWith(c, http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set charging enabled to %t", enabled)

	// Immediate single tick, to avoid waiting for the next loop
	out := monitorLoopForced()

	msg := fmt.Sprintf("charging enabled by user: %t", enabled)
	if enabled && !out.ChargingEnabled {
		msg += fmt.Sprintf(". Charging is still off: charging state is %s", out.ChargingState)
		if out.GuardFailure != battery.GuardNone {
			msg += fmt.Sprintf(", guard %s tripped", out.GuardFailure)
		}
	}

	c.IndentedJSON(http.StatusCreated, msg)
}

func setDischarge(c *gin.Context) {
	var discharge bool
	if err := c.BindJSON(&discharge); err != nil {
		abortWith(c, http.StatusBadRequest, err)
		return
	}

	out := updateState(func(s *battery.State) {
		switch {
		case discharge:
			s.Discharge = battery.DischargeStart
		case s.Discharge == battery.DischargeStart:
			s.Discharge = battery.DischargeResume
		}
	})

	logrus.Infof("set discharge to %t", discharge)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("discharge set to %t, charging state is %s", discharge, out.ChargingState))
}

func setCallState(c *gin.Context) {
	var active bool
	if err := c.BindJSON(&active); err != nil {
		abortWith(c, http.StatusBadRequest, err)
		return
	}

	out := updateState(func(s *battery.State) {
		s.CallActive = active
	})

	logrus.Infof("set call state to %t", active)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("call state set to %t, charging state is %s", active, out.ChargingState))
}

func refreshUISOC(c *gin.Context) {
	out := updateState(func(s *battery.State) {
		s.RefreshUISOC = true
	})

	logrus.Info("ui soc refresh requested")

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("ui soc refreshed, now %d%%", out.UISOC))
}

func setThermalTest(c *gin.Context) {
	// BindJSON cannot validate a nil *int, so decode the body directly.
	b, err := c.GetRawData()
	if err != nil {
		abortWith(c, http.StatusBadRequest, err)
		return
	}
	var t *int
	if err := json.Unmarshal(b, &t); err != nil {
		abortWith(c, http.StatusBadRequest, fmt.Errorf("invalid test temperature: %w", err))
		return
	}

	if t != nil && (*t < -40 || *t > 150) {
		abortWith(c, http.StatusBadRequest, fmt.Errorf("test temperature must be between -40 and 150, got %d", *t))
		return
	}

	out := updateState(func(s *battery.State) {
		s.TemperatureOverride = t
	})

	if t == nil {
		logrus.Info("thermal test mode cleared")
		c.IndentedJSON(http.StatusCreated, "thermal test mode cleared")
		return
	}

	logrus.WithField("temperatureC", *t).Warn("thermal test mode enabled")
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("battery temperature forced to %d°C, charging state is %s", *t, out.ChargingState))
}

func setNotifyTest(c *gin.Context) {
	var mode int
	if err := c.BindJSON(&mode); err != nil {
		abortWith(c, http.StatusBadRequest, err)
		return
	}

	if mode < 0 || mode > battery.MaxNotifyTestMode {
		abortWith(c, http.StatusBadRequest, fmt.Errorf("notify test mode must be between 0 and %d, got %d", battery.MaxNotifyTestMode, mode))
		return
	}

	out := updateState(func(s *battery.State) {
		s.NotifyTestMode = mode
	})

	logrus.Infof("set notify test mode to %d", mode)

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("notify test mode set to %d, notify code is %s", mode, out.NotifyCode))
}

func getEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	logrus.WithField("subscribers", sseHub.Subscribers()).Debug("event subscriber connected")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Content-Type", "text/event-stream")
	// Send headers now so clients see the stream open before the first event.
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-daemonCtx.Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev.Data)
			return true
		}
	})

	logrus.Debug("event subscriber disconnected")
}
