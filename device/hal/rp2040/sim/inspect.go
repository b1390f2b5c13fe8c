package sim

import "github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"

// Peek reads a register or DPRAM word without side effects.
func (p *Peripheral) Peek(addr uintptr) uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.loadLocked(addr)
}

// Poke writes a register or DPRAM word without register semantics, write
// accounting or interrupt delivery.
func (p *Peripheral) Poke(addr uintptr, val uint32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if isDPRAM(addr) {
		p.storeLocked(addr, val)
		return
	}
	p.regs[addr&^reg.AliasMask] = val
}

// Memory returns a copy of the DPRAM.
func (p *Peripheral) Memory() []byte {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]byte(nil), p.dpram[:]...)
}

// Registers returns a copy of every peripheral register written so far.
func (p *Peripheral) Registers() map[uintptr]uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	regs := make(map[uintptr]uint32, len(p.regs))
	for k, v := range p.regs {
		regs[k] = v
	}
	return regs
}

// BufferControl returns the buffer control word of one direction of ep.
func (p *Peripheral) BufferControl(ep uint8, in bool) uint32 {
	if in {
		return p.Peek(reg.EPBufCtrlIn(ep))
	}
	return p.Peek(reg.EPBufCtrlOut(ep))
}

// WriteCount returns how many Bus stores hit the register at addr,
// through any alias.
func (p *Peripheral) WriteCount(addr uintptr) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.writes[addr&^reg.AliasMask]
}

// ClockReads returns how many times Now was called.
func (p *Peripheral) ClockReads() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.clockReads
}

// Barriers returns how many times Barrier was called.
func (p *Peripheral) Barriers() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.barriers
}

// EnabledDomains returns the reset domains passed to Enable, in order.
func (p *Peripheral) EnabledDomains() []uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]uint32(nil), p.resets...)
}

// IRQ returns the registered interrupt line and priority.
func (p *Peripheral) IRQ() (line uint32, priority uint8, ok bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.irqLine, p.priority, p.handler != nil
}

// BootloaderRequests returns how many times ResetToBootloader was called.
func (p *Peripheral) BootloaderRequests() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.bootloaderRequests
}

// WatchdogTriggers returns how many times the watchdog trigger was written.
func (p *Peripheral) WatchdogTriggers() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.watchdogTriggers
}

// DeviceAddress returns the address the controller currently answers at.
func (p *Peripheral) DeviceAddress() uint8 {
	return uint8(p.Peek(reg.USBDevAddrCtrl))
}

// Connected reports SIE_STATUS.CONNECTED.
func (p *Peripheral) Connected() bool {
	return p.Peek(reg.USBSIEStatus)&reg.SIEStatusConnected != 0
}
