package rp2040

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/TheContrappostoShop/klipper/pkg"
)

// PacketSize is the size of every endpoint buffer in DPRAM.
const PacketSize = 64

// Config holds the tunables of the driver.
type Config struct {
	// ACMEndpoint is the interrupt IN endpoint used for CDC notifications.
	ACMEndpoint uint8

	// BulkOutEndpoint receives serial data from the host.
	BulkOutEndpoint uint8

	// BulkInEndpoint sends serial data to the host.
	BulkInEndpoint uint8

	// ErrataRevision is the SYSINFO chip revision affected by RP2040-E5.
	ErrataRevision uint32

	// ErrataDelay is how long the forced J state is held, in microseconds.
	ErrataDelay uint32

	// ErrataTimeout bounds the wait for the connected state after
	// ErrataDelay, in microseconds.
	ErrataTimeout uint32

	// IRQPriority is the NVIC priority of the USB interrupt.
	IRQPriority uint8

	// ResetOnDisconnect reboots the chip through the watchdog when an
	// established bus connection is lost.
	ResetOnDisconnect bool
}

// DefaultConfig returns the endpoint layout and timings used by the
// CDC-ACM descriptors of the firmware.
func DefaultConfig() Config {
	return Config{
		ACMEndpoint:     1,
		BulkOutEndpoint: 2,
		BulkInEndpoint:  3,
		ErrataRevision:  1,
		ErrataDelay:     1000,
		ErrataTimeout:   1000,
		IRQPriority:     1,
	}
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var errs error
	check := func(name string, ep uint8) {
		if ep == 0 || ep >= 16 {
			errs = multierror.Append(errs,
				fmt.Errorf("%s endpoint %d: %w", name, ep, pkg.ErrInvalidEndpoint))
		}
	}
	check("acm", c.ACMEndpoint)
	check("bulk out", c.BulkOutEndpoint)
	check("bulk in", c.BulkInEndpoint)

	if c.ACMEndpoint == c.BulkInEndpoint {
		errs = multierror.Append(errs,
			fmt.Errorf("acm and bulk in share endpoint %d: %w", c.ACMEndpoint, pkg.ErrInvalidEndpoint))
	}
	if c.ErrataDelay == 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("errata delay must be non-zero: %w", pkg.ErrInvalidParameter))
	}
	if c.ErrataTimeout == 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("errata timeout must be non-zero: %w", pkg.ErrInvalidParameter))
	}
	return errs
}

func (p Platform) validate() error {
	var errs error
	if p.Bus == nil {
		errs = multierror.Append(errs, fmt.Errorf("bus: %w", pkg.ErrInvalidParameter))
	}
	if p.Clock == nil {
		errs = multierror.Append(errs, fmt.Errorf("clock: %w", pkg.ErrInvalidParameter))
	}
	if p.Resets == nil {
		errs = multierror.Append(errs, fmt.Errorf("resets: %w", pkg.ErrInvalidParameter))
	}
	if p.IRQ == nil {
		errs = multierror.Append(errs, fmt.Errorf("irq controller: %w", pkg.ErrInvalidParameter))
	}
	if p.Scheduler == nil {
		errs = multierror.Append(errs, fmt.Errorf("scheduler: %w", pkg.ErrInvalidParameter))
	}
	if p.Bootloader == nil {
		errs = multierror.Append(errs, fmt.Errorf("bootloader: %w", pkg.ErrInvalidParameter))
	}
	return errs
}
