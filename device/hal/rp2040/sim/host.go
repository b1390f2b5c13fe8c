package sim

import (
	"fmt"

	"github.com/TheContrappostoShop/klipper/device/hal"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg"
)

// BusReset drives a bus reset. The device address returns to 0 and the
// controller reports the reset; unless StuckAfterReset is set it also
// reports the connected state with the bus idle in J.
func (p *Peripheral) BusReset() {
	p.mutex.Lock()
	sie := p.regs[reg.USBSIEStatus] &^ (reg.SIEStatusLineState | reg.SIEStatusConnected)
	sie |= reg.SIEStatusBusReset | reg.LineStateJ<<reg.SIEStatusLineStateShift
	if p.cfg.StuckAfterReset {
		p.stuck = true
	} else {
		sie |= reg.SIEStatusConnected
	}
	p.regs[reg.USBSIEStatus] = sie
	p.regs[reg.USBDevAddrCtrl] = 0
	p.mutex.Unlock()
	pkg.LogDebug(pkg.ComponentSim, "bus reset", "stuck", p.cfg.StuckAfterReset)
	p.deliver()
}

// SetLineState forces SIE_STATUS.LINE_STATE.
func (p *Peripheral) SetLineState(state uint32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	sie := p.regs[reg.USBSIEStatus] &^ reg.SIEStatusLineState
	p.regs[reg.USBSIEStatus] = sie | state<<reg.SIEStatusLineStateShift&reg.SIEStatusLineState
}

// SetConnected forces SIE_STATUS.CONNECTED.
func (p *Peripheral) SetConnected(connected bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if connected {
		p.regs[reg.USBSIEStatus] |= reg.SIEStatusConnected
		p.stuck = false
	} else {
		p.regs[reg.USBSIEStatus] &^= reg.SIEStatusConnected
	}
}

// Setup delivers a SETUP packet to EP0. SETUP packets are always accepted
// and disarm any EP0 stall.
func (p *Peripheral) Setup(pkt hal.SetupPacket) {
	p.mutex.Lock()
	pkt.MarshalTo(p.dpram[reg.SetupPacket-reg.DPRAMBase:])
	p.regs[reg.USBSIEStatus] |= reg.SIEStatusSetupRec
	p.regs[reg.USBEPStallArm] = 0
	p.mutex.Unlock()
	p.deliver()
}

// Out sends one OUT data packet to ep. It fails with pkg.ErrNAK when the
// driver has not armed the buffer and pkg.ErrStall when the endpoint is
// stalled.
func (p *Peripheral) Out(ep uint8, data []byte) error {
	if err := p.out(ep, data); err != nil {
		return err
	}
	p.deliver()
	return nil
}

func (p *Peripheral) out(ep uint8, data []byte) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	ctrl := reg.EPBufCtrlOut(ep)
	w := p.loadLocked(ctrl)
	if err := p.handshakeLocked(ep, w, reg.EPStallArmEP0Out); err != nil {
		return err
	}
	if len(data) > int(w&reg.BufCtrlLenMask) {
		return fmt.Errorf("ep%d out: %d bytes into %d byte buffer: %w",
			ep, len(data), w&reg.BufCtrlLenMask, pkg.ErrPacketTooLarge)
	}
	addr, err := p.bufferLocked(ep, false)
	if err != nil {
		return err
	}
	copy(p.dpramSlice(addr, len(data)), data)
	w = w&^(reg.BufCtrlAvailable|reg.BufCtrlLenMask) | reg.BufCtrlFull | uint32(len(data))
	p.storeLocked(ctrl, w)
	p.regs[reg.USBBuffStatus] |= reg.BuffStatusOut(ep)
	return nil
}

// In requests one IN data packet from ep and copies it into buf.
func (p *Peripheral) In(ep uint8, buf []byte) (int, error) {
	n, err := p.in(ep, buf)
	if err != nil {
		return 0, err
	}
	p.deliver()
	return n, nil
}

func (p *Peripheral) in(ep uint8, buf []byte) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	ctrl := reg.EPBufCtrlIn(ep)
	w := p.loadLocked(ctrl)
	if err := p.handshakeLocked(ep, w, reg.EPStallArmEP0In); err != nil {
		return 0, err
	}
	addr, err := p.bufferLocked(ep, true)
	if err != nil {
		return 0, err
	}
	n := min(int(w&reg.BufCtrlLenMask), len(buf))
	copy(buf[:n], p.dpramSlice(addr, n))
	p.storeLocked(ctrl, w&^(reg.BufCtrlAvailable|reg.BufCtrlFull))
	p.regs[reg.USBBuffStatus] |= reg.BuffStatusIn(ep)
	return n, nil
}

func (p *Peripheral) handshakeLocked(ep uint8, w, arm uint32) error {
	if w&reg.BufCtrlStall != 0 && (ep != 0 || p.regs[reg.USBEPStallArm]&arm != 0) {
		return fmt.Errorf("ep%d: %w", ep, pkg.ErrStall)
	}
	if w&reg.BufCtrlAvailable == 0 {
		return fmt.Errorf("ep%d: %w", ep, pkg.ErrNAK)
	}
	return nil
}

// bufferLocked resolves the DPRAM buffer the controller uses for one
// direction of ep, as the hardware does: EP0 is fixed, other endpoints come
// from their endpoint control register.
func (p *Peripheral) bufferLocked(ep uint8, in bool) (uintptr, error) {
	if ep == 0 {
		return reg.EP0Buffer, nil
	}
	if ep >= reg.MaxEndpoints {
		return 0, fmt.Errorf("ep%d: %w", ep, pkg.ErrInvalidEndpoint)
	}
	ctrl := reg.EPCtrlOut(ep)
	if in {
		ctrl = reg.EPCtrlIn(ep)
	}
	v := p.loadLocked(ctrl)
	if v&reg.EPCtrlEnable == 0 {
		return 0, fmt.Errorf("ep%d not enabled: %w", ep, pkg.ErrInvalidEndpoint)
	}
	return reg.DPRAMBase + uintptr(v&reg.EPCtrlBufferAddrMask), nil
}
