// Package simulator selects a bootable simulator from a simctl device list.
package simulator

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultRuntimePrefix is prepended to the platform name to form the
// runtime identifier prefix a device group must match.
const DefaultRuntimePrefix = "com.apple.CoreSimulator.SimRuntime."

// Finder picks the first available device for a platform.
type Finder struct {
	prefix string
	logger *zap.Logger
}

// NewFinder creates a Finder. An empty prefix selects DefaultRuntimePrefix.
func NewFinder(prefix string, logger *zap.Logger) *Finder {
	if prefix == "" {
		prefix = DefaultRuntimePrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{prefix: prefix, logger: logger}
}

// RuntimePrefix returns the runtime identifier prefix for platform.
func (f *Finder) RuntimePrefix(platform string) string {
	return f.prefix + platform
}

// Find returns the UDID of the first available device, in document order,
// under a runtime whose identifier starts with the platform's prefix.
// The first available device ends the search; an empty or null UDID on it
// is reported as not found. Only matching runtimes are decoded, and only up
// to the selected device, so an error means a searched entry is malformed.
func (f *Finder) Find(catalog *Catalog, platform string) (string, bool, error) {
	if catalog == nil {
		return "", false, nil
	}
	prefix := f.RuntimePrefix(platform)

	for _, runtime := range catalog.Runtimes {
		if !strings.HasPrefix(runtime.Identifier, prefix) {
			continue
		}
		f.logger.Debug("Scanning runtime", zap.String("runtime", runtime.Identifier))

		device, ok, err := runtime.FirstAvailable()
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		f.logger.Debug("Selected simulator",
			zap.String("udid", device.UDID),
			zap.String("name", device.Name),
			zap.String("state", device.State))
		return device.UDID, device.UDID != "", nil
	}
	return "", false, nil
}
