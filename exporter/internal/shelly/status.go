package shelly

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Reading is a measured value kept as the decimal text the device sent, so
// rendering never adds or drops precision.
type Reading string

// Float64 parses the reading. Readings built by this package always parse.
func (r Reading) Float64() float64 {
	f, _ := strconv.ParseFloat(string(r), 64)
	return f
}

func (r Reading) String() string { return string(r) }

// Status is the normalized switch status of one plug at one instant.
type Status struct {
	Power        Reading // apower, watts
	Voltage      Reading // volts
	Current      Reading // amps
	TemperatureC Reading
	TemperatureF Reading

	// TotalEnergy is the device's running energy counter, read verbatim.
	TotalEnergy Reading

	// DeviceTime is the device's own timestamp; zero when not reported.
	DeviceTime time.Time
}

// switchStatus mirrors the fields of Switch.GetStatus the exporter reads.
// Pointers distinguish absent or null fields from zero values.
type switchStatus struct {
	APower      *json.Number       `json:"apower"`
	Voltage     *json.Number       `json:"voltage"`
	Current     *json.Number       `json:"current"`
	Temperature *temperatureStatus `json:"temperature"`
	AEnergy     *energyStatus      `json:"aenergy"`
}

type temperatureStatus struct {
	C *json.Number `json:"tC"`
	F *json.Number `json:"tF"`
}

type energyStatus struct {
	Total    *json.Number `json:"total"`
	MinuteTS *int64       `json:"minute_ts"`
}

// parseStatus decodes a Switch.GetStatus body.
func parseStatus(body []byte) (*Status, error) {
	var raw switchStatus
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	st := &Status{}
	var err error
	if st.Power, err = required("apower", raw.APower); err != nil {
		return nil, err
	}
	if st.Voltage, err = required("voltage", raw.Voltage); err != nil {
		return nil, err
	}
	if st.Current, err = required("current", raw.Current); err != nil {
		return nil, err
	}
	if raw.AEnergy == nil {
		return nil, fmt.Errorf("%w: aenergy", errMissingField)
	}
	if st.TotalEnergy, err = required("aenergy.total", raw.AEnergy.Total); err != nil {
		return nil, err
	}
	if raw.AEnergy.MinuteTS != nil {
		st.DeviceTime = time.Unix(*raw.AEnergy.MinuteTS, 0).UTC()
	}

	if raw.Temperature == nil {
		return nil, fmt.Errorf("%w: temperature", errMissingField)
	}
	c, f := raw.Temperature.C, raw.Temperature.F
	switch {
	case c != nil && f != nil:
		st.TemperatureC, st.TemperatureF = Reading(*c), Reading(*f)
	case c != nil:
		st.TemperatureC = Reading(*c)
		st.TemperatureF = formatDerived(CelsiusToFahrenheit(st.TemperatureC.Float64()))
	case f != nil:
		st.TemperatureF = Reading(*f)
		st.TemperatureC = formatDerived(FahrenheitToCelsius(st.TemperatureF.Float64()))
	default:
		return nil, fmt.Errorf("%w: temperature.tC or temperature.tF", errMissingField)
	}

	return st, nil
}

func required(name string, n *json.Number) (Reading, error) {
	if n == nil || *n == "" {
		return "", fmt.Errorf("%w: %s", errMissingField, name)
	}
	if _, err := n.Float64(); err != nil {
		return "", fmt.Errorf("field %s: %w", name, err)
	}
	return Reading(*n), nil
}

// CelsiusToFahrenheit converts and rounds to two decimals.
func CelsiusToFahrenheit(c float64) float64 {
	return round2(c*9/5 + 32)
}

// FahrenheitToCelsius converts and rounds to two decimals.
func FahrenheitToCelsius(f float64) float64 {
	return round2((f - 32) * 5 / 9)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatDerived(v float64) Reading {
	return Reading(strconv.FormatFloat(v, 'f', -1, 64))
}
