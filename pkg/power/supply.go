package power

import (
	"strconv"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/thermal"
)

// Supply is the battery and charger pair the monitor drives.
type Supply struct {
	conn    Connection
	battery string
	charger string

	mu         sync.Mutex
	last       battery.Reading
	tempSensor thermal.Sensor
}

// Options selects the supplies under the power_supply root.
type Options struct {
	Root    string
	Battery string
	Charger string
}

func (o Options) withDefaults() Options {
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	if o.Battery == "" {
		o.Battery = DefaultBatterySupply
	}
	if o.Charger == "" {
		o.Charger = DefaultChargerSupply
	}
	return o
}

// New returns a Supply backed by sysfs.
func New(opts Options) *Supply {
	opts = opts.withDefaults()
	return NewWithConnection(NewSysfsConnection(opts.Root), opts)
}

// NewWithConnection returns a Supply over any Connection. opts.Root is ignored.
func NewWithConnection(conn Connection, opts Options) *Supply {
	opts = opts.withDefaults()
	return &Supply{
		conn:    conn,
		battery: opts.Battery,
		charger: opts.Charger,
		last: battery.Reading{
			BatteryPresent: true,
			ChargerType:    battery.ChargerUnknown,
		},
	}
}

// NewMock returns a Supply over a MockConnection with prefill values, using
// the default supply names.
func NewMock(prefillValues map[string]string) (*Supply, *MockConnection) {
	conn := NewMockConnection()

	for key, value := range prefillValues {
		err := conn.Write(key, value)
		if err != nil {
			panic(err)
		}
	}
	conn.writes = nil

	return NewWithConnection(conn, Options{}), conn
}

// Open opens the connection.
func (s *Supply) Open() error {
	return s.conn.Open()
}

// Close closes the connection.
func (s *Supply) Close() error {
	return s.conn.Close()
}

// ReadAttr reads a raw attribute.
func (s *Supply) ReadAttr(key string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"key": key,
	}).Trace("Trying to read power supply attribute")

	v, err := s.conn.Read(key)
	if err != nil {
		return v, err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v,
	}).Trace("Read power supply attribute succeed")

	return v, nil
}

// WriteAttr writes a raw attribute.
func (s *Supply) WriteAttr(key string, value string) error {
	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": value,
	}).Trace("Trying to write power supply attribute")

	err := s.conn.Write(key, value)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": value,
	}).Trace("Write power supply attribute succeed")

	return nil
}

func (s *Supply) batteryKey(attr string) string {
	return s.battery + "/" + attr
}

func (s *Supply) chargerKey(attr string) string {
	return s.charger + "/" + attr
}

func (s *Supply) readInt(key string) (int64, error) {
	v, err := s.ReadAttr(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "invalid value %q for %s", v, key)
	}
	return n, nil
}

func (s *Supply) readBool(key string) (bool, error) {
	n, err := s.readInt(key)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// selected returns the active entry of a sysfs choice list such as
// "auto [inhibit-charge] force-discharge". Plain values pass through.
func selected(v string) string {
	start := strings.IndexByte(v, '[')
	end := strings.IndexByte(v, ']')
	if start >= 0 && end > start {
		return v[start+1 : end]
	}
	return strings.TrimSpace(v)
}
