//go:build !linux || baremetal

package ble

import (
	"errors"

	"tinygo.org/x/bluetooth"
)

// unsupportedRadio stands in where the peripheral role is not available
type unsupportedRadio struct{}

// DefaultRadio returns a radio that fails to enable on this platform
func DefaultRadio() Radio {
	return unsupportedRadio{}
}

func (unsupportedRadio) Enable() error {
	return errors.ErrUnsupported
}

func (unsupportedRadio) Serve(ServiceSpec) (ReportWriter, error) {
	return nil, errors.ErrUnsupported
}

func (unsupportedRadio) Advertise(string, bluetooth.UUID) error {
	return errors.ErrUnsupported
}

func (unsupportedRadio) StopAdvertising() error {
	return nil
}
