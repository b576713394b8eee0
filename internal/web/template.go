package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/power-clock/internal/status"
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
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Power Clock</title>
<style>
body { font-family: monospace; margin: 0; min-height: 100vh; background: #eee; }
#clock { position: absolute; cursor: move; user-select: none; -webkit-user-drag: none; }
#info { position: fixed; bottom: 0; right: 0; background: #fff; padding: 0.5em 1em; font-size: 0.8em; opacity: 0.85; }
table { border-collapse: collapse; }
td, th { text-align: left; padding: 2px 6px; }
.connected { color: green; }
.disconnected { color: red; }
.fallback { color: orange; }
</style>
</head>
<body>
{{if .Ready}}<img id="clock" src="/frame.png" alt="power clock" style="left: {{.PositionX}}px; top: {{.PositionY}}px">
{{else}}<p id="clock" style="left: {{.PositionX}}px; top: {{.PositionY}}px">waiting for the first frame</p>
{{end}}
<div id="info">
<table>
<tr><th>Queue</th><td>{{.Config.Queue}}</td></tr>
<tr><th>Schedule</th><td{{if .Fallback}} class="fallback"{{end}}>{{.UnavailableHours}}h off{{if .Fallback}} (fetch failed){{end}}</td></tr>
<tr><th>Updated</th><td>{{stamp .ScheduleAt}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>
<a href="/index.json">JSON</a>
</div>
<script>
(function() {
  var clock = document.getElementById("clock");
  var drag = null;

  clock.addEventListener("mousedown", function(e) {
    if (e.button !== 0) return;
    e.preventDefault();
    drag = { dx: e.clientX - clock.offsetLeft, dy: e.clientY - clock.offsetTop };
  });

  document.addEventListener("mousemove", function(e) {
    if (!drag) return;
    clock.style.left = (e.clientX - drag.dx) + "px";
    clock.style.top = (e.clientY - drag.dy) + "px";
  });

  document.addEventListener("mouseup", function() {
    if (!drag) return;
    drag = null;
    fetch("/position", { method: "POST", body: clock.offsetLeft + "," + clock.offsetTop });
  });

  clock.addEventListener("contextmenu", function(e) {
    e.preventDefault();
    fetch("/dismiss", { method: "POST" }).then(function() {
      clock.remove();
    });
  });

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function(e) {
      var msg = JSON.parse(e.data);
      if (clock.tagName !== "IMG") {
        location.reload();
        return;
      }
      clock.src = "/frame.png?f=" + msg.frame;
    };
    ws.onclose = function() {
      setTimeout(connect, 5000);
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() and Ready() methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Ready  bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Ready:    snap.Ready(),
	}
	return indexTmpl.Execute(w, data)
}
