package power

// Connection reads and writes named power-supply attributes. Keys look like
// "<supply>/<attribute>", for example "battery/voltage_now".
type Connection interface {
	Open() error
	Close() error
	Read(key string) (string, error)
	Write(key string, value string) error
}
