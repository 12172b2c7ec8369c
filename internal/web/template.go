package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/env-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Environment Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.lcd { background: #9c3; color: #222; padding: 8px 12px; display: inline-block; white-space: pre; font-size: 1.2em; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Environment Monitor</h1>

{{if .Ticked}}
<div class="lcd" id="lcd">{{index .Lines 0}}
{{index .Lines 1}}</div>

<h2>Sensors</h2>
<table>
<tr><th>Gas</th><td>{{.Reading.Gas}}</td></tr>
<tr><th>Sound</th><td>{{.Reading.Sound}}</td></tr>
<tr><th>Water</th><td>{{.Reading.Water}}</td></tr>
<tr><th>Temperature</th><td>{{if .Climate.Valid}}{{printf "%.1f" .Climate.Temperature}} °C{{else}}<span class="unknown">unavailable</span>{{end}}</td></tr>
<tr><th>Humidity</th><td>{{if .Climate.Valid}}{{printf "%.0f" .Climate.Humidity}} %{{else}}<span class="unknown">unavailable</span>{{end}}</td></tr>
<tr><th>Motion</th><td class="{{if .Reading.Motion}}on{{else}}off{{end}}">{{if .Reading.Motion}}DETECTED{{else}}none{{end}}</td></tr>
<tr><th>Vibration</th><td class="{{if .Reading.Vibration}}on{{else}}off{{end}}">{{if .Reading.Vibration}}DETECTED{{else}}none{{end}}</td></tr>
</table>

<h2>Outputs</h2>
<table>
<tr><th>Indicator</th><td class="{{if .Actuation.Primary}}on{{else}}off{{end}}">{{onOff .Actuation.Primary}}</td></tr>
<tr><th>Buzzer</th><td class="{{if .Actuation.Secondary}}on{{else}}off{{end}}">{{onOff .Actuation.Secondary}}</td></tr>
</table>
{{else}}
<p class="unknown">Waiting for first reading...</p>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
<tr><th>Tick errors</th><td>{{.Counts.TickErrors}}</td></tr>
<tr><th>Telemetry lines</th><td>{{.Counts.Emitted}}</td></tr>
<tr><th>Climate reads</th><td>{{.Counts.ClimateAttempts}} ({{.Counts.ClimateFailures}} failed)</td></tr>
<tr><th>Alerts</th><td>{{.Counts.Alerts}}</td></tr>
{{if .LastError}}<tr><th>Last error</th><td>{{.LastError}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Climate</th><td>{{.Config.ClimateMs}}ms</td></tr>
<tr><th>Telemetry</th><td>{{.Config.TelemetryMs}}ms{{if .Config.Telemetry}} to {{.Config.Telemetry}}{{end}}</td></tr>
<tr><th>Page</th><td>{{.Config.PageMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/history.json">History</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
