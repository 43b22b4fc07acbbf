package simulator

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// Device is one simulator entry of `xcrun simctl list devices -j`.
type Device struct {
	UDID        string `json:"udid"`
	Name        string `json:"name,omitempty"`
	State       string `json:"state,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}

// Runtime is the device list stored under one runtime identifier,
// e.g. "com.apple.CoreSimulator.SimRuntime.iOS-17-0". The list is kept
// raw and only decoded when a caller asks for it, so malformed entries
// under runtimes nobody searches never fail a lookup.
type Runtime struct {
	Identifier string
	devices    []byte
	typ        jsonparser.ValueType
}

// Catalog is the "devices" object of a simctl device list.
// Runtimes keep the order they appear in the document.
type Catalog struct {
	Runtimes []Runtime
}

// ParseCatalog reads the runtime identifiers of a simctl device list.
func ParseCatalog(data []byte) (*Catalog, error) {
	if !json.Valid(data) {
		return nil, errors.New("device list is not valid JSON")
	}

	devices, typ, _, err := jsonparser.Get(data, "devices")
	if err != nil {
		return nil, fmt.Errorf("device list has no %q field: %w", "devices", err)
	}
	if typ != jsonparser.Object {
		return nil, fmt.Errorf("device list field %q is %s, want object", "devices", typ)
	}

	catalog := &Catalog{}
	err = jsonparser.ObjectEach(devices, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		// Keys arrive unescaped; copy before the parser reuses the buffer.
		catalog.Runtimes = append(catalog.Runtimes, Runtime{
			Identifier: string(key),
			devices:    value,
			typ:        vt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// Devices decodes every device of the runtime.
func (r Runtime) Devices() ([]Device, error) {
	var devices []Device
	err := r.eachDevice(func(d Device) bool {
		devices = append(devices, d)
		return false
	})
	return devices, err
}

// FirstAvailable returns the first device with isAvailable set. Devices
// after it are not decoded.
func (r Runtime) FirstAvailable() (Device, bool, error) {
	var found Device
	var ok bool
	err := r.eachDevice(func(d Device) bool {
		if d.IsAvailable {
			found, ok = d, true
		}
		return ok
	})
	if err != nil {
		return Device{}, false, err
	}
	return found, ok, nil
}

// eachDevice decodes devices in order until fn returns true.
func (r Runtime) eachDevice(fn func(Device) bool) error {
	if r.typ != jsonparser.Array {
		return fmt.Errorf("runtime %s: devices is %s, want array", r.Identifier, r.typ)
	}

	var (
		index   int
		done    bool
		walkErr error
	)
	_, err := jsonparser.ArrayEach(r.devices, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
		if done || walkErr != nil {
			return
		}
		if err != nil {
			walkErr = err
			return
		}
		device, err := decodeDevice(value, vt)
		if err != nil {
			walkErr = fmt.Errorf("runtime %s, device %d: %w", r.Identifier, index, err)
			return
		}
		index++
		done = fn(device)
	})
	if walkErr != nil {
		return walkErr
	}
	if err != nil {
		return fmt.Errorf("runtime %s: %w", r.Identifier, err)
	}
	return nil
}

func decodeDevice(data []byte, typ jsonparser.ValueType) (Device, error) {
	var d Device
	if typ != jsonparser.Object {
		return d, fmt.Errorf("device is %s, want object", typ)
	}

	// Anything but a JSON true counts as unavailable.
	if available, err := jsonparser.GetBoolean(data, "isAvailable"); err == nil {
		d.IsAvailable = available
	}
	d.Name, _ = jsonparser.GetString(data, "name")
	d.State, _ = jsonparser.GetString(data, "state")

	value, vt, _, err := jsonparser.Get(data, "udid")
	switch {
	case vt == jsonparser.String:
		d.UDID, err = jsonparser.ParseString(value)
		if err != nil {
			return d, fmt.Errorf("invalid udid: %w", err)
		}
	case vt == jsonparser.Null || !d.IsAvailable:
		// null reads as an empty UDID; unavailable devices are never selected.
	case vt == jsonparser.NotExist:
		return d, fmt.Errorf("available device has no udid: %w", err)
	default:
		return d, fmt.Errorf("available device udid is %s, want string", vt)
	}
	return d, nil
}
