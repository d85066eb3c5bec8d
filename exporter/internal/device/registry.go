package device

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/config"
)

// statusPath is the Shelly Gen2 RPC call for the first switch component.
const statusPath = "/rpc/Switch.GetStatus?id=0"

var (
	// ErrDuplicateAddress is returned when an address is registered twice.
	ErrDuplicateAddress = errors.New("duplicate device address")

	// ErrInvalidAddress is returned for addresses that are not a bare host
	// or host:port.
	ErrInvalidAddress = errors.New("invalid device address")
)

// Device is one smart plug. Label is what the renderer emits as hostname.
type Device struct {
	Address string
	Label   string
}

// StatusURL returns the URL of the plug's switch status endpoint.
func (d Device) StatusURL() string {
	return "http://" + d.Address + statusPath
}

// Registry is the ordered set of devices polled on every scrape.
// It is built once at startup and only read afterwards, so concurrent
// All calls need no locking.
type Registry struct {
	devices []Device
	index   map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]struct{})}
}

// FromConfig registers every configured device in order.
func FromConfig(devices []config.Device) (*Registry, error) {
	r := NewRegistry()
	for _, d := range devices {
		if err := r.Register(d.Address, d.Alias); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a device. An empty label falls back to the address.
func (r *Registry) Register(address, label string) error {
	address = strings.TrimSpace(address)
	if err := validateAddress(address); err != nil {
		return err
	}
	if _, ok := r.index[address]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAddress, address)
	}
	if label == "" {
		label = address
	}
	r.index[address] = struct{}{}
	r.devices = append(r.devices, Device{Address: address, Label: label})
	return nil
}

// All returns the devices in registration order. The slice is a copy.
func (r *Registry) All() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.devices)
}

func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if strings.Contains(address, "://") || strings.ContainsAny(address, "/?#@ ") {
		return fmt.Errorf("%w: %q must be a host or host:port", ErrInvalidAddress, address)
	}
	u, err := url.Parse("http://" + address)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return nil
}
