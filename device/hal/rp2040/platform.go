package rp2040

import (
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg/sched"
)

// Bus gives access to memory-mapped registers and the USB DPRAM.
//
// Load and Store are single 32-bit volatile accesses. LoadBytes and
// StoreBytes copy to and from DPRAM and are not ordered against other
// accesses unless bracketed by Barrier.
type Bus interface {
	Load(addr uintptr) uint32
	Store(addr uintptr, val uint32)
	LoadBytes(addr uintptr, dst []byte)
	StoreBytes(addr uintptr, src []byte)
	Barrier()
}

// Clock is a free-running monotonic timer.
type Clock interface {
	// Now returns the current time in timer ticks.
	Now() uint32

	// FromMicros converts microseconds to timer ticks.
	FromMicros(us uint32) uint32
}

// Resets takes peripheral blocks out of reset.
type Resets interface {
	Enable(domain uint32)
}

// IRQHandler is the interrupt entry point of a peripheral driver. It is an
// alias so platform packages can implement IRQController without importing
// this package.
type IRQHandler = interface {
	HandleIRQ()
}

// IRQController routes a hardware interrupt line to a handler.
type IRQController interface {
	EnableIRQ(h IRQHandler, irq uint32, priority uint8)
}

// Scheduler registers init callbacks and tasks and wakes tasks.
// *sched.Scheduler implements it.
type Scheduler interface {
	AddInit(name string, fn func())
	AddTask(name string, fn func())
	WakeTask(w *sched.Wake)
}

// Bootloader reboots into the boot ROM's USB mass storage loader.
type Bootloader interface {
	ResetToBootloader()
}

// Platform bundles the collaborators the driver runs on.
type Platform struct {
	Bus        Bus
	Clock      Clock
	Resets     Resets
	IRQ        IRQController
	Scheduler  Scheduler
	Bootloader Bootloader
}

// timerIsBefore reports whether t1 is before t2, tolerating wraparound.
func timerIsBefore(t1, t2 uint32) bool {
	return int32(t1-t2) < 0
}

func setBits(b Bus, addr uintptr, mask uint32) {
	b.Store(addr|reg.AliasSet, mask)
}

func clearBits(b Bus, addr uintptr, mask uint32) {
	b.Store(addr|reg.AliasClear, mask)
}

// writeMasked replaces the bits of mask at addr with those of val using a
// single atomic XOR.
func writeMasked(b Bus, addr uintptr, val, mask uint32) {
	b.Store(addr|reg.AliasXor, (b.Load(addr)^val)&mask)
}
