// Package config loads the exporter configuration.
//
// Top-level types:
//   - Config{Exporter, Devices} - full config tree parsed from YAML
//   - ExporterConfig - port, fetch_timeout, log_level, log_format
//   - Device - address and optional alias
//
// Load(path) reads the YAML file, applies defaults (port 9001, 10s fetch
// timeout, info/json logging), then validates. Default() gives the same
// defaults for flag-only setups.
//
// AddDevices merges devices given on the command line, resolving aliases
// from `ip:hostname` mappings.
//
// Watch(ctx, path, onChange) uses fsnotify on the file's parent directory, so
// in-place writes and rename-over saves are both reported. The device list is
// fixed once the exporter starts; callers use Config.DeviceDiff to log which
// addresses an edit would add or remove.
package config
