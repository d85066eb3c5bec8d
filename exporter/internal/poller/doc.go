// Package poller runs one scrape cycle: a goroutine per registered device,
// each writing only its own slot of Snapshot.Results, joined before the
// snapshot is returned. A failing or slow device affects only its own slot.
package poller
