package rp2040

import (
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg"
)

// writePacket hands one packet to the IN side of ep.
func (u *USB) writePacket(ep uint8, data []byte) (int, error) {
	if len(data) > PacketSize {
		return 0, pkg.ErrPacketTooLarge
	}
	ctrl := reg.EPBufCtrlIn(ep)
	epb := u.bus.Load(ctrl)
	if epb&(reg.BufCtrlAvailable|reg.BufCtrlFull) != 0 {
		return 0, pkg.ErrNotReady
	}

	pid := (epb ^ reg.BufCtrlData1PID) & reg.BufCtrlData1PID
	next := reg.BufCtrlFull | reg.BufCtrlLast | pid | uint32(len(data))
	u.bus.Store(ctrl, next)

	u.bus.Barrier()
	u.bus.StoreBytes(bufferAddr(ep, true), data)
	u.bus.Barrier()

	// AVAILABLE must be a separate write; the controller may start sending
	// as soon as it sees it.
	u.bus.Store(ctrl, next|reg.BufCtrlAvailable)
	return len(data), nil
}

// readPacket takes one received packet from the OUT side of ep.
func (u *USB) readPacket(ep uint8, buf []byte) (int, error) {
	ctrl := reg.EPBufCtrlOut(ep)
	epb := u.bus.Load(ctrl)
	if epb&(reg.BufCtrlAvailable|reg.BufCtrlFull) != reg.BufCtrlFull {
		return 0, pkg.ErrNotReady
	}

	// Re-arm before copying; the length is taken from the captured word.
	pid := (epb ^ reg.BufCtrlData1PID) & reg.BufCtrlData1PID
	next := reg.BufCtrlLast | pid | PacketSize
	u.bus.Store(ctrl, next)

	n := int(epb & reg.BufCtrlLenMask)
	if n > len(buf) {
		n = len(buf)
	}
	u.bus.Barrier()
	u.bus.LoadBytes(bufferAddr(ep, false), buf[:n])
	u.bus.Barrier()

	u.bus.Store(ctrl, next|reg.BufCtrlAvailable)
	return n, nil
}
