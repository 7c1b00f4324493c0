//go:build linux && !baremetal

package ble

import (
	"tinygo.org/x/bluetooth"
)

// adapterRadio runs the peripheral on BlueZ
type adapterRadio struct {
	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement
}

// DefaultRadio returns the host's default BLE adapter
func DefaultRadio() Radio {
	return &adapterRadio{adapter: bluetooth.DefaultAdapter}
}

func (r *adapterRadio) Enable() error {
	return r.adapter.Enable()
}

func (r *adapterRadio) Serve(svc ServiceSpec) (ReportWriter, error) {
	report := &bluetooth.Characteristic{}
	err := r.adapter.AddService(&bluetooth.Service{
		UUID: svc.Service,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: report,
				UUID:   svc.Report,
				Value:  svc.InitialReport,
				Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
			},
			{
				UUID:  svc.RemoteButton,
				Flags: bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					// Presses are single writes; continuation chunks are not commands
					if offset != 0 || svc.OnRemoteWrite == nil {
						return
					}
					svc.OnRemoteWrite(value)
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *adapterRadio) Advertise(localName string, service bluetooth.UUID) error {
	adv := r.adapter.DefaultAdvertisement()
	err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    localName,
		ServiceUUIDs: []bluetooth.UUID{service},
	})
	if err != nil {
		return err
	}
	if err := adv.Start(); err != nil {
		return err
	}
	r.adv = adv
	return nil
}

func (r *adapterRadio) StopAdvertising() error {
	if r.adv == nil {
		return nil
	}
	err := r.adv.Stop()
	r.adv = nil
	return err
}
