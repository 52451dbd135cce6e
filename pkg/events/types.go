package events

import "encoding/json"

// Event name constants
const (
	UISOC    = "battery.uisoc"
	State    = "battery.state"
	Guard    = "battery.guard"
	Shutdown = "battery.shutdown"
	Charger  = "battery.charger"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// UISOCEvent is the payload of battery.uisoc.
type UISOCEvent struct {
	From int   `json:"from"`
	To   int   `json:"to"`
	SOC  int   `json:"soc"`
	Ts   int64 `json:"ts"`
}

// StateEvent is the payload of battery.state.
type StateEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
	Ts   int64  `json:"ts"`
}

// GuardEvent is the payload of battery.guard, sent when a guard check starts
// failing.
type GuardEvent struct {
	Guard        string `json:"guard"`
	State        string `json:"state"`
	TemperatureC int    `json:"temperatureC"`
	ChargerMV    int    `json:"chargerMV"`
	Ts           int64  `json:"ts"`
}

// ShutdownEvent is the payload of battery.shutdown.
type ShutdownEvent struct {
	TemperatureC int   `json:"temperatureC"`
	Ts           int64 `json:"ts"`
}

// ChargerEvent is the payload of battery.charger.
type ChargerEvent struct {
	Present bool   `json:"present"`
	Type    string `json:"type"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.UISOCEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.From, payload.To)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
