package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/battmon/pkg/battery"
	"github.com/charlie0129/battmon/pkg/events"
)

// serveUnix serves handler on a fresh unix socket. Socket paths have a short
// length limit, so it does not use t.TempDir.
func serveUnix(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	dir, err := os.MkdirTemp("", "battmon")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "d.sock")
	l, err := net.Listen("unix", sock)
	require.NoError(t, err)

	srv := &http.Server{Handler: handler}
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	return NewClient(sock)
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.GetVersion()
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestClient_Requests(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotMethod, gotPath, gotBody = r.Method, r.URL.Path, string(b)
		switch r.URL.Path {
		case "/ui-soc":
			_, _ = w.Write([]byte("57"))
		case "/charging-state":
			_, _ = w.Write([]byte(`"TOPOFF"`))
		case "/version":
			_, _ = w.Write([]byte(`"v1.2.3"`))
		case "/thermal":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`"no thermal sources configured"`))
		case "/notify-test":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`"out of range"`))
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`"ok"`))
		}
	})
	c := serveUnix(t, mux)

	uiSoc, err := c.GetUISOC()
	require.NoError(t, err)
	assert.Equal(t, 57, uiSoc)

	cs, err := c.GetChargingState()
	require.NoError(t, err)
	assert.Equal(t, battery.StateTopOff, cs)

	v, err := c.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", v)

	_, err = c.GetThermal()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.SetNotifyTest(9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 400")

	temp := 55
	_, err = c.SetThermalTest(&temp)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/thermal-test", gotPath)
	assert.Equal(t, "55", gotBody)

	_, err = c.SetThermalTest(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", gotBody)

	_, err = c.SetDischarge(true)
	require.NoError(t, err)
	assert.Equal(t, "/discharge", gotPath)
	assert.Equal(t, "true", gotBody)
}

func TestClient_UnknownChargingState(t *testing.T) {
	c := serveUnix(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"DISCHARGING"`))
	}))

	_, err := c.GetChargingState()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown charging state")
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		"event:battery.uisoc",
		`data:{"from":50,"to":49,"soc":48,"ts":1}`,
		"",
		": comment",
		"event: battery.state",
		`data: {"from":"CC",`,
		`data: "to":"ERROR","ts":2}`,
		"",
		"",
	}, "\n")

	ch := make(chan events.Event, 4)
	require.NoError(t, readEvents(context.Background(), strings.NewReader(stream), ch))
	close(ch)

	var got []events.Event
	for ev := range ch {
		got = append(got, ev)
	}
	require.Len(t, got, 2)

	assert.Equal(t, events.UISOC, got[0].Name)
	p, err := events.DecodeAs[events.UISOCEvent](got[0])
	require.NoError(t, err)
	assert.Equal(t, events.UISOCEvent{From: 50, To: 49, SOC: 48, Ts: 1}, p)

	assert.Equal(t, events.State, got[1].Name)
	s, err := events.DecodeAs[events.StateEvent](got[1])
	require.NoError(t, err)
	assert.Equal(t, "ERROR", s.To)
}

func TestReadEvents_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan events.Event)
	err := readEvents(ctx, strings.NewReader("event:x\ndata:{}\n\n"), ch)
	assert.True(t, errors.Is(err, context.Canceled))
}
