// Package shelly fetches switch status from Shelly Gen2 smart plugs.
//
// Client.Fetch performs one GET of /rpc/Switch.GetStatus?id=0 and returns a
// Result holding either a normalized Status or a FetchError classified as
// Unreachable, Timeout or MalformedResponse. Every request is bounded by the
// client's fixed timeout and is never retried; the next scrape is the retry.
//
// Field mapping from the Switch component status:
//
//	apower            -> Status.Power
//	voltage           -> Status.Voltage
//	current           -> Status.Current
//	temperature.tC/tF -> Status.TemperatureC / TemperatureF
//	aenergy.total     -> Status.TotalEnergy
//	aenergy.minute_ts -> Status.DeviceTime
//
// When only one temperature unit is reported the other is derived and
// rounded to two decimals.
package shelly
