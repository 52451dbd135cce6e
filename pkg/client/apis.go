package client

import (
	"encoding/json"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/powerinfo"
	"github.com/charlie0129/battmon/pkg/thermal"
	"github.com/charlie0129/battmon/pkg/types"
)

func (c *Client) GetStatus() (*types.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st types.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetUISOC() (int, error) {
	ret, err := c.Get("/ui-soc")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get ui soc")
	}
	uiSoc, err := strconv.Atoi(ret)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal ui soc")
	}
	return uiSoc, nil
}

func (c *Client) GetChargingState() (battery.ChargingState, error) {
	ret, err := c.Get("/charging-state")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get charging state")
	}

	var cs battery.ChargingState
	if err := json.Unmarshal([]byte(ret), &cs); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal charging state")
	}
	if !cs.Valid() {
		return "", pkgerrors.Errorf("daemon reported unknown charging state %q", cs)
	}
	return cs, nil
}

func (c *Client) GetConfig() (*types.ConfigInfo, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf types.ConfigInfo
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetBatteryInfo() ([]powerinfo.Battery, error) {
	ret, err := c.Get("/battery-info")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}

	var bats []powerinfo.Battery
	if err := json.Unmarshal([]byte(ret), &bats); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery info")
	}
	return bats, nil
}

// GetThermal returns ErrNotFound when the daemon has no virtual sensor.
func (c *Client) GetThermal() (*thermal.Status, error) {
	ret, err := c.Get("/thermal")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get thermal status")
	}

	var st thermal.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal thermal status")
	}
	return &st, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func (c *Client) SetCharging(enabled bool) (string, error) {
	return c.Put("/charging", strconv.FormatBool(enabled))
}

func (c *Client) SetDischarge(enabled bool) (string, error) {
	return c.Put("/discharge", strconv.FormatBool(enabled))
}

func (c *Client) SetCallState(active bool) (string, error) {
	return c.Put("/call-state", strconv.FormatBool(active))
}

func (c *Client) RefreshUISOC() (string, error) {
	return c.Put("/refresh-ui-soc", "")
}

// SetThermalTest forces the battery temperature to celsius. nil clears it.
func (c *Client) SetThermalTest(celsius *int) (string, error) {
	payload, err := json.Marshal(celsius)
	if err != nil {
		return "", err
	}
	return c.Put("/thermal-test", string(payload))
}

func (c *Client) SetNotifyTest(mode int) (string, error) {
	return c.Put("/notify-test", strconv.Itoa(mode))
}
