package sim

import (
	"errors"
	"fmt"

	"github.com/TheContrappostoShop/klipper/device/hal"
	"github.com/TheContrappostoShop/klipper/pkg"
)

// DefaultMaxNAKs bounds how often a Host retries a NAKed packet.
const DefaultMaxNAKs = 100

// maxPacket is the full speed packet size of EP0 and the bulk endpoints.
const maxPacket = 64

// Host plays the USB host against a Peripheral at transfer level.
//
// Poll is called after every SETUP and every NAK; it must give the device
// firmware a chance to run, typically by running one scheduler pass.
type Host struct {
	p       *Peripheral
	poll    func()
	MaxNAKs int
}

// NewHost creates a host driving p.
func NewHost(p *Peripheral, poll func()) *Host {
	return &Host{p: p, poll: poll, MaxNAKs: DefaultMaxNAKs}
}

func (h *Host) retry(ep uint8, fn func() error) error {
	for naks := 0; ; naks++ {
		err := fn()
		if !errors.Is(err, pkg.ErrNAK) {
			return err
		}
		if naks >= h.MaxNAKs {
			return fmt.Errorf("ep%d: %d NAKs: %w", ep, naks, pkg.ErrTimeout)
		}
		h.poll()
	}
}

// Reset drives a bus reset and lets the device react to it.
func (h *Host) Reset() {
	h.p.BusReset()
	h.poll()
}

// OutPacket sends one packet to ep, retrying while the device NAKs.
func (h *Host) OutPacket(ep uint8, data []byte) error {
	return h.retry(ep, func() error {
		return h.p.Out(ep, data)
	})
}

// InPacket reads one packet from ep, retrying while the device NAKs.
func (h *Host) InPacket(ep uint8, buf []byte) (int, error) {
	var n int
	err := h.retry(ep, func() error {
		var err error
		n, err = h.p.In(ep, buf)
		return err
	})
	return n, err
}

// Control runs a complete control transfer and returns the IN data stage,
// if any. data is sent as the OUT data stage of host-to-device requests.
func (h *Host) Control(pkt hal.SetupPacket, data []byte) ([]byte, error) {
	h.p.Setup(pkt)
	h.poll()

	var buf [maxPacket]byte
	if pkt.IsDeviceToHost() {
		var got []byte
		for len(got) < int(pkt.Length) {
			n, err := h.InPacket(0, buf[:])
			if err != nil {
				return got, fmt.Errorf("data stage: %w", err)
			}
			got = append(got, buf[:n]...)
			if n < maxPacket {
				break
			}
		}
		if err := h.OutPacket(0, nil); err != nil {
			return got, fmt.Errorf("status stage: %w", err)
		}
		return got, nil
	}

	for len(data) > 0 {
		n := min(len(data), maxPacket)
		if err := h.OutPacket(0, data[:n]); err != nil {
			return nil, fmt.Errorf("data stage: %w", err)
		}
		data = data[n:]
	}
	if _, err := h.InPacket(0, buf[:]); err != nil {
		return nil, fmt.Errorf("status stage: %w", err)
	}
	return nil, nil
}
