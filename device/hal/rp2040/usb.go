package rp2040

import (
	"fmt"
	"sync/atomic"

	"github.com/TheContrappostoShop/klipper/device/hal"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg"
	"github.com/TheContrappostoShop/klipper/pkg/sched"
)

// USB drives the RP2040 USB controller as a CDC-ACM device.
//
// Methods other than HandleIRQ run in task context and must not be called
// concurrently with each other. HandleIRQ may preempt any of them.
type USB struct {
	cfg    Config
	bus    Bus
	clock  Clock
	resets Resets
	irq    IRQController
	sched  Scheduler
	boot   Bootloader
	notify hal.Notifier

	// INTE value armed while waiting for a SETUP packet.
	irqMask  uint32
	revision uint32
	errata   bool

	// Device address waiting for the SET_ADDRESS status stage.
	address atomic.Uint32

	errataWake sched.Wake

	// Task context only.
	wasConnected bool
}

// New creates a driver on p that reports events to n.
func New(p Platform, n hal.Notifier, cfg Config) (*USB, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("platform: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if n == nil {
		return nil, fmt.Errorf("notifier: %w", pkg.ErrInvalidParameter)
	}
	return &USB{
		cfg:    cfg,
		bus:    p.Bus,
		clock:  p.Clock,
		resets: p.Resets,
		irq:    p.IRQ,
		sched:  p.Scheduler,
		boot:   p.Bootloader,
		notify: n,
	}, nil
}

// Config returns the configuration the driver was created with.
func (u *USB) Config() Config {
	return u.cfg
}

// Revision returns the silicon revision read by Init.
func (u *USB) Revision() uint32 {
	return u.revision
}

// ErrataEnabled reports whether Init selected the RP2040-E5 workaround.
func (u *USB) ErrataEnabled() bool {
	return u.errata
}

// PendingAddress returns the latched SET_ADDRESS value, or 0.
func (u *USB) PendingAddress() uint8 {
	return uint8(u.address.Load())
}

// RequestBootloader reboots into the boot ROM.
func (u *USB) RequestBootloader() {
	u.boot.ResetToBootloader()
}

// bufferAddr returns the DPRAM buffer of one direction of ep.
func bufferAddr(ep uint8, in bool) uintptr {
	if ep == 0 {
		return reg.EP0Buffer
	}
	offset := uintptr(reg.EPBufferBase) + uintptr(ep)*PacketSize*2
	if !in {
		offset += PacketSize
	}
	return reg.DPRAMBase + offset
}

// Compile-time interface checks
var (
	_ hal.Transport = (*USB)(nil)
	_ IRQHandler    = (*USB)(nil)
)
