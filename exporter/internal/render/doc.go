// Package render writes a poller.Snapshot as line-oriented exposition text:
//
//	current_datetime{hostname=kitchen} 2023-11-14T22:13:20.000Z
//	power_watts{hostname=kitchen} 114.2
//	...
//
// Each successful device contributes seven lines in a fixed order; a failed
// device contributes none. Label values are written unquoted and numbers
// exactly as the device reported them, matching what existing dashboards
// scrape from this exporter.
//
// current_datetime is the device's own clock as reported in
// aenergy.minute_ts, which is the start of the device's current minute. It
// can therefore trail the scrape by up to 59 seconds. Only when the device
// omits minute_ts is the exporter's query time used instead.
package render
