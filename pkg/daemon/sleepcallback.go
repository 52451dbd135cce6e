package daemon

import (
	"context"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	login1Path      = "/org/freedesktop/login1"
	login1Interface = "org.freedesktop.login1.Manager"
	prepareForSleep = login1Interface + ".PrepareForSleep"
)

// sleepNotifier delivers logind PrepareForSleep notifications. true means the
// system is about to sleep, false means it has just woken up.
type sleepNotifier interface {
	Notifications() <-chan bool
	Close() error
}

type logindNotifier struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	out     chan bool
}

// newLogindNotifier subscribes to PrepareForSleep on the system bus.
func newLogindNotifier() (*logindNotifier, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to system bus")
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(login1Path),
		dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember("PrepareForSleep"),
	)
	if err != nil {
		_ = conn.Close()
		return nil, pkgerrors.Wrapf(err, "failed to add match rule for %s", prepareForSleep)
	}

	n := &logindNotifier{
		conn:    conn,
		signals: make(chan *dbus.Signal, 10),
		out:     make(chan bool, 1),
	}
	conn.Signal(n.signals)

	go func() {
		defer close(n.out)
		for sig := range n.signals {
			if sig.Name != prepareForSleep {
				continue
			}
			if len(sig.Body) != 1 {
				logrus.Errorf("unexpected %s signal body: %v", prepareForSleep, sig.Body)
				continue
			}
			start, ok := sig.Body[0].(bool)
			if !ok {
				logrus.Errorf("unexpected %s signal body: %v", prepareForSleep, sig.Body)
				continue
			}
			n.out <- start
		}
	}()

	return n, nil
}

func (n *logindNotifier) Notifications() <-chan bool {
	return n.out
}

func (n *logindNotifier) Close() error {
	n.conn.RemoveSignal(n.signals)
	close(n.signals)
	return n.conn.Close()
}

func systemWillSleepCallback() {
	logrus.Debugln("received PrepareForSleep(true), system will go to sleep")

	// Apply the latest decision before the clock stops.
	out := monitorLoopForced()
	logrus.WithFields(logrus.Fields{
		"chargingState":   out.ChargingState,
		"chargingEnabled": out.ChargingEnabled,
		"uiSoc":           out.UISOC,
	}).Debug("state before sleep")
}

func systemHasPoweredOnCallback() {
	logrus.Debugln("received PrepareForSleep(false), system has finished waking up")

	// The periodic tick after a suspend sees the gap and counts it as missed,
	// so the sleeping time never reaches the time based counters.
	requestTick()
}

// listenSleepNotifications dispatches sleep and wake notifications until ctx
// is done or the notifier closes.
func listenSleepNotifications(ctx context.Context, n sleepNotifier) {
	logrus.Info("registered and listening system sleep notifications")
	for {
		select {
		case <-ctx.Done():
			return
		case start, ok := <-n.Notifications():
			if !ok {
				logrus.Warn("sleep notifications stopped")
				return
			}
			if start {
				systemWillSleepCallback()
			} else {
				systemHasPoweredOnCallback()
			}
		}
	}
}
