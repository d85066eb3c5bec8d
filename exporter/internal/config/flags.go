package config

import (
	"log/slog"
	"strings"
)

// StringList is a repeatable flag.Value. Each occurrence may carry several
// space-separated items, so both `-i "a b"` and `-i a -i b` work.
type StringList []string

func (l *StringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, " ")
}

func (l *StringList) Set(v string) error {
	*l = append(*l, strings.Fields(v)...)
	return nil
}

// AddDevices appends one Device per address, resolving its alias from
// mappings in `ip:hostname` form. Malformed mappings are logged and skipped;
// an address without a usable mapping keeps an empty alias so the registry
// labels it with the address.
func (c *Config) AddDevices(addrs, mappings []string) {
	aliases := parseMappings(mappings)
	for _, addr := range addrs {
		c.Devices = append(c.Devices, Device{Address: addr, Alias: aliases[addr]})
	}
}

// parseMappings splits `ip:hostname` entries on the last colon so addresses
// carrying a port (`10.0.0.1:8080:kitchen`) still resolve.
func parseMappings(mappings []string) map[string]string {
	out := make(map[string]string, len(mappings))
	for _, m := range mappings {
		idx := strings.LastIndex(m, ":")
		if idx <= 0 || idx == len(m)-1 {
			slog.Warn("config: invalid hostname mapping, use format `ip:hostname`", "mapping", m)
			continue
		}
		out[m[:idx]] = m[idx+1:]
	}
	return out
}
