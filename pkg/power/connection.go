package power

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// ErrAttributeNotFound is returned when an attribute does not exist.
var ErrAttributeNotFound = os.ErrNotExist

// SysfsConnection talks to a power_supply class directory.
type SysfsConnection struct {
	root string
}

// NewSysfsConnection returns a connection rooted at dir, usually
// /sys/class/power_supply.
func NewSysfsConnection(dir string) *SysfsConnection {
	return &SysfsConnection{root: dir}
}

func (c *SysfsConnection) Open() error {
	fi, err := os.Stat(c.root)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open power supply root %s", c.root)
	}
	if !fi.IsDir() {
		return pkgerrors.Errorf("power supply root %s is not a directory", c.root)
	}
	return nil
}

func (c *SysfsConnection) Close() error {
	return nil
}

func (c *SysfsConnection) Read(key string) (string, error) {
	b, err := os.ReadFile(filepath.Join(c.root, key))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (c *SysfsConnection) Write(key string, value string) error {
	// sysfs attributes already exist. Never create files under the root.
	f, err := os.OpenFile(filepath.Join(c.root, key), os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(value); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// MockConnection keeps attributes in memory.
type MockConnection struct {
	mu     sync.RWMutex
	values map[string]string
	writes []string
	open   bool
}

// NewMockConnection returns an empty in-memory connection.
func NewMockConnection() *MockConnection {
	return &MockConnection{values: map[string]string{}}
}

func (c *MockConnection) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	return nil
}

func (c *MockConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockConnection) Read(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	if !ok {
		return "", pkgerrors.Wrapf(ErrAttributeNotFound, "attribute %s", key)
	}
	return v, nil
}

func (c *MockConnection) Write(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	c.writes = append(c.writes, key+"="+value)
	return nil
}

// Writes returns every write so far as "key=value".
func (c *MockConnection) Writes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.writes...)
}

// Delete removes an attribute, as if the driver did not expose it.
func (c *MockConnection) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}
