package daemon

import "strings"

var (
	unitName = "battmon.service"
	unitDir  = "/etc/systemd/system"
)

const unitTemplate = `[Unit]
Description=battmon battery monitor daemon
After=local-fs.target

[Service]
Type=simple
ExecStart=/path/to/battmon daemon --config=/path/to/config --daemon-socket=/path/to/socket
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`

// UnitOptions are the paths baked into the unit file.
type UnitOptions struct {
	ExePath    string
	ConfigPath string
	SocketPath string
}

// RenderUnit returns the systemd unit that runs the daemon with opts.
func RenderUnit(opts UnitOptions) string {
	return strings.NewReplacer(
		"/path/to/battmon", opts.ExePath,
		"/path/to/config", opts.ConfigPath,
		"/path/to/socket", opts.SocketPath,
	).Replace(unitTemplate)
}
