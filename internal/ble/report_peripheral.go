// Package ble publishes finished session reports over a BLE GATT service and
// accepts remote button presses on a writable characteristic.
package ble

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"tinygo.org/x/bluetooth"

	"github.com/lowaak/smart-trainer/rep-coach/internal/events"
	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

const (
	ServiceUUID      = "6e4a0001-5c8b-4d4f-9b2e-7265702d636f"
	ReportUUID       = "6e4a0002-5c8b-4d4f-9b2e-7265702d636f"
	RemoteButtonUUID = "6e4a0003-5c8b-4d4f-9b2e-7265702d636f"

	DefaultLocalName = "Rep Coach"
)

// Bytes accepted on the remote-button characteristic
const (
	CommandConfirm byte = 0x01
	CommandCount   byte = 0x02
)

// RemoteButton is a button pressed over the air
type RemoteButton int

const (
	RemoteConfirm RemoteButton = iota
	RemoteCount
)

func (b RemoteButton) String() string {
	switch b {
	case RemoteConfirm:
		return "confirm"
	case RemoteCount:
		return "count"
	default:
		return fmt.Sprintf("RemoteButton(%d)", int(b))
	}
}

// ErrNotServing is returned when a report is published before Start succeeded
var ErrNotServing = errors.New("ble: peripheral is not serving")

// ReportWriter is the report characteristic: a write updates the value and
// notifies subscribed centrals
type ReportWriter interface {
	Write(p []byte) (int, error)
}

// ServiceSpec describes the GATT service a Radio must expose
type ServiceSpec struct {
	Service       bluetooth.UUID
	Report        bluetooth.UUID
	RemoteButton  bluetooth.UUID
	InitialReport []byte
	OnRemoteWrite func(value []byte)
}

// Radio is the part of the BLE stack the peripheral uses
type Radio interface {
	Enable() error
	Serve(svc ServiceSpec) (ReportWriter, error)
	Advertise(localName string, service bluetooth.UUID) error
	StopAdvertising() error
}

// ReportPeripheral serves session reports and remote buttons
type ReportPeripheral struct {
	radio     Radio
	localName string
	logger    *log.Logger

	mu        sync.Mutex
	report    ReportWriter
	published int

	remoteButtonEvent *events.CallbackEvent[RemoteButton]
}

// NewReportPeripheralArg holds the arguments for creating a new ReportPeripheral
type NewReportPeripheralArg struct {
	Radio     Radio
	LocalName string // empty means DefaultLocalName
	Logger    *log.Logger
}

func NewReportPeripheral(args NewReportPeripheralArg) *ReportPeripheral {
	if args.Radio == nil {
		panic("ReportPeripheral: radio cannot be nil")
	}
	if args.Logger == nil {
		panic("ReportPeripheral: logger cannot be nil")
	}
	name := args.LocalName
	if name == "" {
		name = DefaultLocalName
	}
	return &ReportPeripheral{
		radio:             args.Radio,
		localName:         name,
		logger:            args.Logger,
		remoteButtonEvent: events.NewCallbackEvent[RemoteButton](),
	}
}

// Start enables the radio, registers the service and starts advertising
func (p *ReportPeripheral) Start() error {
	serviceUUID, err := bluetooth.ParseUUID(ServiceUUID)
	if err != nil {
		return fmt.Errorf("parse service uuid: %w", err)
	}
	reportUUID, err := bluetooth.ParseUUID(ReportUUID)
	if err != nil {
		return fmt.Errorf("parse report uuid: %w", err)
	}
	remoteUUID, err := bluetooth.ParseUUID(RemoteButtonUUID)
	if err != nil {
		return fmt.Errorf("parse remote button uuid: %w", err)
	}

	if err := p.radio.Enable(); err != nil {
		return fmt.Errorf("enable BLE stack: %w", err)
	}
	report, err := p.radio.Serve(ServiceSpec{
		Service:       serviceUUID,
		Report:        reportUUID,
		RemoteButton:  remoteUUID,
		InitialReport: []byte("{}"),
		OnRemoteWrite: p.HandleRemoteWrite,
	})
	if err != nil {
		return fmt.Errorf("add report service: %w", err)
	}
	if err := p.radio.Advertise(p.localName, serviceUUID); err != nil {
		return fmt.Errorf("advertise %q: %w", p.localName, err)
	}

	p.mu.Lock()
	p.report = report
	p.mu.Unlock()
	p.logger.Printf("ReportPeripheral: advertising as %q", p.localName)
	return nil
}

// Stop stops advertising. Reports published afterwards fail with ErrNotServing.
func (p *ReportPeripheral) Stop() error {
	p.mu.Lock()
	serving := p.report != nil
	p.report = nil
	p.mu.Unlock()
	if !serving {
		return nil
	}
	if err := p.radio.StopAdvertising(); err != nil {
		return fmt.Errorf("stop advertising: %w", err)
	}
	p.logger.Printf("ReportPeripheral: stopped")
	return nil
}

// Publish writes a report as JSON to the report characteristic
func (p *ReportPeripheral) Publish(r session.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report %d: %w", r.SessionNumber, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.report == nil {
		return ErrNotServing
	}
	if _, err := p.report.Write(raw); err != nil {
		return fmt.Errorf("write report %d: %w", r.SessionNumber, err)
	}
	p.published++
	return nil
}

// Hook is a session report hook. Failures are logged, the session goes on.
func (p *ReportPeripheral) Hook(r session.Report) {
	if err := p.Publish(r); err != nil {
		p.logger.Printf("ReportPeripheral: %v", err)
		return
	}
	p.logger.Printf("ReportPeripheral: published session %d", r.SessionNumber)
}

// Published returns how many reports reached the characteristic
func (p *ReportPeripheral) Published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

// HandleRemoteWrite decodes a write on the remote-button characteristic.
// Every byte is one press; unknown bytes are logged and skipped.
func (p *ReportPeripheral) HandleRemoteWrite(value []byte) {
	for _, b := range value {
		switch b {
		case CommandConfirm:
			p.remoteButtonEvent.Notify(RemoteConfirm)
		case CommandCount:
			p.remoteButtonEvent.Notify(RemoteCount)
		default:
			p.logger.Printf("ReportPeripheral: ignoring remote command 0x%02x", b)
		}
	}
}

// ListenToRemoteButtons registers a callback for remote presses. Callbacks run
// on the BLE stack's goroutine and must not block.
// Returns a deregistration function
func (p *ReportPeripheral) ListenToRemoteButtons(fn func(RemoteButton)) func() {
	return p.remoteButtonEvent.Listen(fn)
}
