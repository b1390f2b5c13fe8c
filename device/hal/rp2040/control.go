package rp2040

import (
	"github.com/TheContrappostoShop/klipper/device/hal"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg"
)

func (u *USB) setupPending() bool {
	return u.bus.Load(reg.USBIntr)&reg.IntSetupReq != 0
}

// ReadSetup copies the pending SETUP packet into buf and prepares EP0 for
// the transfer it starts.
func (u *USB) ReadSetup(buf []byte) (int, error) {
	if !u.setupPending() {
		u.bus.Store(reg.USBInte, u.irqMask)
		return 0, pkg.ErrNotReady
	}
	u.bus.Store(reg.EPBufCtrlIn(0), 0)
	u.bus.Store(reg.EPBufCtrlOut(0),
		reg.BufCtrlData1PID|reg.BufCtrlLast|reg.BufCtrlAvailable|PacketSize)
	u.bus.Store(reg.USBSIEStatus, reg.SIEStatusSetupRec)

	n := len(buf)
	if n > hal.SetupPacketSize {
		n = hal.SetupPacketSize
	}
	u.bus.Barrier()
	u.bus.LoadBytes(reg.SetupPacket, buf[:n])
	u.bus.Barrier()

	if u.setupPending() {
		// Raced with the next SETUP; have the caller start over.
		u.notify.OnControlEvent()
		return 0, pkg.ErrNotReady
	}
	return n, nil
}

// ReadControlData copies one EP0 OUT data packet into buf.
func (u *USB) ReadControlData(buf []byte) (int, error) {
	if u.setupPending() {
		return 0, pkg.ErrEarlyTermination
	}
	return u.readPacket(0, buf)
}

// SendControlData queues one EP0 IN data packet.
func (u *USB) SendControlData(data []byte) (int, error) {
	if u.setupPending() || u.bus.Load(reg.USBBuffStatus)&reg.BuffStatusOut(0) != 0 {
		return 0, pkg.ErrEarlyTermination
	}
	return u.writePacket(0, data)
}

// StallControl stalls EP0 in both directions.
func (u *USB) StallControl() {
	u.bus.Store(reg.EPBufCtrlIn(0), 0)
	u.bus.Store(reg.EPBufCtrlOut(0), 0)
	u.bus.Store(reg.USBEPStallArm, reg.EPStallArmEP0)
	u.bus.Store(reg.EPBufCtrlIn(0), reg.BufCtrlStall)
	u.bus.Store(reg.EPBufCtrlOut(0), reg.BufCtrlStall)
	u.notify.OnControlEvent()
}

// SetAddress latches addr and sends the status stage of SET_ADDRESS. The
// controller keeps answering at address 0 until HandleIRQ sees the status
// packet go out.
func (u *USB) SetAddress(addr uint8) {
	u.address.Store(uint32(addr))
	_, _ = u.SendControlData(nil)
}

// SetConfigured resets the bulk IN data toggle and arms bulk OUT reception.
func (u *USB) SetConfigured() {
	u.bus.Store(reg.EPBufCtrlIn(u.cfg.BulkInEndpoint), reg.BufCtrlData1PID)
	u.bus.Store(reg.EPBufCtrlOut(u.cfg.BulkOutEndpoint),
		reg.BufCtrlAvailable|reg.BufCtrlLast|PacketSize)
}
