package sim

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
)

// IRQHandler is the interrupt entry point registered through EnableIRQ.
type IRQHandler = interface {
	HandleIRQ()
}

// maxIRQChain bounds back-to-back handler invocations for one event.
const maxIRQChain = 8

// chipIDBase is the part and manufacturer fields of an RP2040 CHIP_ID.
const chipIDBase = 0x0002<<12 | 0x927

// sieStatusW1C are the SIE_STATUS bits cleared by writing one.
const sieStatusW1C = reg.SIEStatusSetupRec | reg.SIEStatusBusReset

// Config selects the behavior of the simulated silicon.
type Config struct {
	// Revision is reported in SYSINFO CHIP_ID.
	Revision uint32

	// ClockStep is how far the timer advances on every Now call.
	ClockStep uint32

	// StuckAfterReset makes bus resets leave the controller disconnected,
	// as affected silicon sometimes does.
	StuckAfterReset bool

	// ForcedJConnects lets the errata J state recover a stuck controller.
	ForcedJConnects bool
}

// DefaultConfig returns an unaffected (B2) part with a 10 tick clock step.
func DefaultConfig() Config {
	return Config{
		Revision:  2,
		ClockStep: 10,
	}
}

// Peripheral simulates the RP2040 USB controller, its DPRAM and the few
// other blocks the driver touches. It implements the driver's Bus, Clock,
// Resets, IRQController and Bootloader.
//
// Driver-side methods (the Bus interface) and host-side methods (Setup,
// Out, In, BusReset) may be called from different goroutines. Interrupts
// are delivered synchronously on the goroutine whose access raised them,
// never while another handler invocation is running.
type Peripheral struct {
	mutex sync.Mutex
	cfg   Config

	dpram  [reg.DPRAMSize]byte
	regs   map[uintptr]uint32
	writes map[uintptr]int
	stuck  bool

	now        uint32
	clockReads int
	barriers   int

	handler  IRQHandler
	irqLine  uint32
	priority uint8
	inIRQ    bool

	resets             []uint32
	bootloaderRequests int
	watchdogTriggers   int

	hook func(addr uintptr)
}

// New creates a powered-up, detached peripheral.
func New(cfg Config) *Peripheral {
	return &Peripheral{
		cfg:    cfg,
		regs:   make(map[uintptr]uint32),
		writes: make(map[uintptr]int),
	}
}

// SetHook installs fn to run after every Bus access, outside the
// peripheral lock. Host-side methods may be called from fn to inject
// events at a precise point of a driver operation.
func (p *Peripheral) SetHook(fn func(addr uintptr)) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.hook = fn
}

func (p *Peripheral) accessed(addr uintptr) {
	p.mutex.Lock()
	fn := p.hook
	p.mutex.Unlock()
	if fn != nil {
		fn(addr)
	}
}

func isDPRAM(addr uintptr) bool {
	return addr >= reg.DPRAMBase && addr < reg.DPRAMBase+reg.DPRAMSize
}

func (p *Peripheral) dpramSlice(addr uintptr, n int) []byte {
	off := addr - reg.DPRAMBase
	if !isDPRAM(addr) || int(off)+n > reg.DPRAMSize {
		panic(fmt.Sprintf("sim: dpram access out of range: 0x%08x+%d", addr, n))
	}
	return p.dpram[off : int(off)+n]
}

// Load implements Bus.
func (p *Peripheral) Load(addr uintptr) uint32 {
	v := p.load(addr)
	p.accessed(addr)
	return v
}

func (p *Peripheral) load(addr uintptr) uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.loadLocked(addr)
}

func (p *Peripheral) loadLocked(addr uintptr) uint32 {
	if isDPRAM(addr) {
		return binary.LittleEndian.Uint32(p.dpramSlice(addr, 4))
	}
	switch addr &^ reg.AliasMask {
	case reg.USBIntr:
		return p.intrLocked()
	case reg.USBInts:
		return p.intrLocked() & p.regs[reg.USBInte]
	case reg.SysinfoChipID:
		return p.cfg.Revision<<reg.ChipIDRevisionShift | chipIDBase
	case reg.TimerRawL:
		return p.now
	}
	return p.regs[addr&^reg.AliasMask]
}

func (p *Peripheral) intrLocked() uint32 {
	sie := p.regs[reg.USBSIEStatus]
	intr := p.regs[reg.USBIntf]
	if sie&reg.SIEStatusSetupRec != 0 {
		intr |= reg.IntSetupReq
	}
	if sie&reg.SIEStatusBusReset != 0 {
		intr |= reg.IntBusReset
	}
	if p.regs[reg.USBBuffStatus] != 0 {
		intr |= reg.IntBuffStatus
	}
	return intr
}

// Store implements Bus. Peripheral registers honor the XOR, set and clear
// alias windows.
func (p *Peripheral) Store(addr uintptr, val uint32) {
	p.store(addr, val)
	p.accessed(addr)
	p.deliver()
}

func (p *Peripheral) store(addr uintptr, val uint32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.storeLocked(addr, val)
}

func (p *Peripheral) storeLocked(addr uintptr, val uint32) {
	if isDPRAM(addr) {
		binary.LittleEndian.PutUint32(p.dpramSlice(addr, 4), val)
		return
	}
	base := addr &^ reg.AliasMask
	p.writes[base]++

	old := p.regs[base]
	switch addr & reg.AliasMask {
	case reg.AliasXor:
		val = old ^ val
	case reg.AliasSet:
		val = old | val
	case reg.AliasClear:
		val = old &^ val
	}

	switch base {
	case reg.USBSIEStatus:
		p.regs[base] = old &^ (val & sieStatusW1C)
	case reg.USBBuffStatus:
		p.regs[base] = old &^ val
	case reg.USBIntr, reg.USBInts, reg.SysinfoChipID, reg.TimerRawL:
		// Read-only.
	case reg.USBMuxing:
		p.regs[base] = val
		if val&reg.MuxingToDigitalPad != 0 && p.stuck && p.cfg.ForcedJConnects &&
			p.regs[reg.USBSIEStatus]&reg.SIEStatusLineState != reg.LineStateSE0 {
			p.stuck = false
			p.regs[reg.USBSIEStatus] |= reg.SIEStatusConnected
		}
	case reg.WatchdogCtrl:
		p.regs[base] = val &^ reg.WatchdogCtrlTrigger
		if val&reg.WatchdogCtrlTrigger != 0 {
			p.watchdogTriggers++
		}
	default:
		p.regs[base] = val
	}
}

// LoadBytes implements Bus.
func (p *Peripheral) LoadBytes(addr uintptr, dst []byte) {
	p.copyDPRAM(addr, dst, false)
	p.accessed(addr)
}

// StoreBytes implements Bus.
func (p *Peripheral) StoreBytes(addr uintptr, src []byte) {
	p.copyDPRAM(addr, src, true)
	p.accessed(addr)
}

// copyDPRAM copies between b and DPRAM at addr. It panics on an
// out-of-range access with the mutex released.
func (p *Peripheral) copyDPRAM(addr uintptr, b []byte, toDPRAM bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	mem := p.dpramSlice(addr, len(b))
	if toDPRAM {
		copy(mem, b)
	} else {
		copy(b, mem)
	}
}

// Barrier implements Bus.
func (p *Peripheral) Barrier() {
	p.mutex.Lock()
	p.barriers++
	p.mutex.Unlock()
}

// deliver runs the registered handler while an enabled interrupt is
// pending.
func (p *Peripheral) deliver() {
	for i := 0; i < maxIRQChain; i++ {
		p.mutex.Lock()
		if p.handler == nil || p.inIRQ || p.intrLocked()&p.regs[reg.USBInte] == 0 {
			p.mutex.Unlock()
			return
		}
		p.inIRQ = true
		h := p.handler
		p.mutex.Unlock()

		h.HandleIRQ()

		p.mutex.Lock()
		p.inIRQ = false
		p.mutex.Unlock()
	}
}

// Now implements Clock. Every call advances the timer by ClockStep.
func (p *Peripheral) Now() uint32 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	t := p.now
	p.now += p.cfg.ClockStep
	p.clockReads++
	return t
}

// FromMicros implements Clock; the simulated timer ticks at 1 MHz.
func (p *Peripheral) FromMicros(us uint32) uint32 {
	return us
}

// Advance moves the timer forward by us microseconds.
func (p *Peripheral) Advance(us uint32) {
	p.mutex.Lock()
	p.now += us
	p.mutex.Unlock()
}

// Enable implements Resets.
func (p *Peripheral) Enable(domain uint32) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.resets = append(p.resets, domain)
	p.regs[reg.ResetsReset] &^= domain
	p.regs[reg.ResetsResetDone] |= domain
}

// EnableIRQ implements IRQController.
func (p *Peripheral) EnableIRQ(h IRQHandler, irq uint32, priority uint8) {
	p.mutex.Lock()
	p.handler = h
	p.irqLine = irq
	p.priority = priority
	p.mutex.Unlock()
	p.deliver()
}

// ResetToBootloader implements Bootloader. The simulated chip keeps
// running.
func (p *Peripheral) ResetToBootloader() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.bootloaderRequests++
}
