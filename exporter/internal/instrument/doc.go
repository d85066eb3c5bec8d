// Package instrument holds the exporter's self-metrics (scrape count and
// latency, per-device up and failure counters) built with client_golang.
// They are served on /exporter/metrics so the device output on /metrics
// keeps its fixed seven-metric vocabulary.
package instrument
