package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/thermostat/internal/logic"
	"github.com/sweeney/thermostat/internal/status"
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
	"frame": logic.FormatFrame,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Thermostat</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: #c40; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Thermostat</h1>

<h2>Control</h2>
<table>
{{if .Baselined}}<tr><th>Temperature</th><td id="temperature">{{.Last.Temperature}}</td></tr>
<tr><th>Setpoint</th><td id="setpoint">{{.Last.SetPoint}}°C</td></tr>
<tr><th>Heat</th><td id="heat" class="{{if .Last.Heat}}on{{else}}off{{end}}">{{if .Last.Heat}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Frame</th><td id="frame">{{frame .Last}}</td></tr>
<tr><th>Cycles</th><td id="elapsed">{{.Last.Elapsed}}</td></tr>
<tr><th>Sensor failures</th><td id="failures">{{.Last.SensorFailures}}</td></tr>
{{else}}<tr><th>State</th><td class="unknown">waiting for first cycle</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Heat ON</th><td>{{.Counts.HeatOn}}</td></tr>
<tr><th>Heat OFF</th><td>{{.Counts.HeatOff}}</td></tr>
<tr><th>Setpoint changes</th><td>{{.Counts.SetPointChanges}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.Profile}} at {{printf "%#02x" .Config.SensorAddress}}</td></tr>
<tr><th>Serial</th><td>{{.Config.SerialPort}} @ {{.Config.Baud}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms, sample every {{.Config.SampleEvery}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Dropped cycles</th><td>{{.DroppedCycles}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/frame">Frame</a></p>
<script>
(function() {
  function set(id, text) {
    var el = document.getElementById(id);
    if (el) { el.textContent = text; }
  }
  setInterval(function() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(j) {
      var s = j.status;
      if (!s.ready) { return; }
      set("temperature", s.temperature.toFixed(2) + "°C");
      set("setpoint", s.setpoint + "°C");
      set("frame", s.frame);
      set("elapsed", s.elapsed);
      set("failures", s.sensor_failures);
      var heat = document.getElementById("heat");
      if (heat) {
        heat.textContent = s.heat ? "ON" : "OFF";
        heat.className = s.heat ? "on" : "off";
      }
    }).catch(function() {});
  }, 2000);
})();
</script>
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
