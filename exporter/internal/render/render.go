package render

import (
	"bytes"
	"io"
	"time"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/poller"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/shelly"
)

// Metric names, in the order they are written for each device.
const (
	MetricDatetime     = "current_datetime"
	MetricPower        = "power_watts"
	MetricVoltage      = "voltage"
	MetricCurrent      = "current_amps"
	MetricTempC        = "temperature_celsius"
	MetricTempF        = "temperature_fahrenheit"
	MetricRunningTotal = "running_total_power_consumed_watts"
)

// LabelKey is the single label attached to every line.
const LabelKey = "hostname"

// timeLayout is RFC 3339 with fixed milliseconds, always in UTC.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Render returns the exposition text for snap.
func Render(snap poller.Snapshot) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, snap)
	return buf.Bytes()
}

// Write renders snap to w: seven lines per successful device in snapshot
// order, nothing for failed devices.
func Write(w io.Writer, snap poller.Snapshot) error {
	var buf bytes.Buffer
	for _, res := range snap.Results {
		if res == nil || !res.OK() {
			continue
		}
		writeDevice(&buf, res)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeDevice(buf *bytes.Buffer, res *shelly.Result) {
	label := res.Device.Label
	st := res.Status

	ts := st.DeviceTime
	if ts.IsZero() {
		ts = res.QueriedAt
	}

	line(buf, MetricDatetime, label, formatTime(ts))
	line(buf, MetricPower, label, st.Power.String())
	line(buf, MetricVoltage, label, st.Voltage.String())
	line(buf, MetricCurrent, label, st.Current.String())
	line(buf, MetricTempC, label, st.TemperatureC.String())
	line(buf, MetricTempF, label, st.TemperatureF.String())
	line(buf, MetricRunningTotal, label, st.TotalEnergy.String())
}

func line(buf *bytes.Buffer, name, label, value string) {
	buf.WriteString(name)
	buf.WriteByte('{')
	buf.WriteString(LabelKey)
	buf.WriteByte('=')
	buf.WriteString(label)
	buf.WriteString("} ")
	buf.WriteString(value)
	buf.WriteByte('\n')
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
