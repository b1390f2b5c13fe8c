package rp2040

import (
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg"
)

// ErrataTask applies the RP2040-E5 workaround after a bus reset.
//
// Affected silicon can miss the end of a bus reset and never reach the
// connected state. Briefly routing D+ through the digital pad with a forced
// J state makes the controller see the reset complete. The task only does
// work when HandleIRQ has woken it.
func (u *USB) ErrataTask() {
	if !u.errataWake.Check() {
		return
	}
	status := u.bus.Load(reg.USBSIEStatus)
	if status&reg.SIEStatusConnected != 0 {
		return
	}
	if status&reg.SIEStatusLineState == reg.LineStateSE0 {
		// Still in reset; look again on the next pass.
		u.sched.WakeTask(&u.errataWake)
		return
	}
	u.forceReconnect()
}

func (u *USB) forceReconnect() {
	ctrlAddr := reg.IOBank0Ctrl(reg.GPIODP)
	padAddr := reg.PadsBank0GPIO(reg.GPIODP)
	ctrlPrev := u.bus.Load(ctrlAddr)
	padPrev := u.bus.Load(padAddr)

	// Bus keep, no output, USB debug mux, input forced high.
	writeMasked(u.bus, padAddr, reg.PadPUE|reg.PadPDE, reg.PadPUE|reg.PadPDE)
	writeMasked(u.bus, ctrlAddr,
		reg.GPIOOEOverDisable<<reg.GPIOCtrlOEOverShift, reg.GPIOCtrlOEOverMask)
	writeMasked(u.bus, ctrlAddr, reg.GPIOFuncUSBDebugMux, reg.GPIOCtrlFuncselMask)
	writeMasked(u.bus, ctrlAddr,
		reg.GPIOInOverForceHigh<<reg.GPIOCtrlInOverShift, reg.GPIOCtrlInOverMask)

	// The PHY pull-up has to stay on while the pad drives D+.
	setBits(u.bus, reg.USBPhyDirect, reg.PhyDirectDPPullupEn)
	setBits(u.bus, reg.USBPhyDirectOverride, reg.PhyDirectOverrideDPPullupEnEn)
	u.bus.Store(reg.USBMuxing, reg.MuxingToDigitalPad|reg.MuxingSoftCon)

	end := u.clock.Now() + u.clock.FromMicros(u.cfg.ErrataDelay)
	for timerIsBefore(u.clock.Now(), end) {
	}

	end += u.clock.FromMicros(u.cfg.ErrataTimeout)
	connected := false
	for {
		if u.bus.Load(reg.USBSIEStatus)&reg.SIEStatusConnected != 0 {
			connected = true
			break
		}
		if timerIsBefore(end, u.clock.Now()) {
			break
		}
	}

	u.bus.Store(reg.USBMuxing, reg.MuxingToPhy|reg.MuxingSoftCon)
	clearBits(u.bus, reg.USBPhyDirectOverride, reg.PhyDirectOverrideDPPullupEnEn)
	u.bus.Store(ctrlAddr, ctrlPrev)
	u.bus.Store(padAddr, padPrev)

	if connected {
		pkg.LogDebug(pkg.ComponentErrata, "forced reconnect succeeded")
	} else {
		pkg.LogWarn(pkg.ComponentErrata, "forced reconnect timed out",
			"timeout_us", u.cfg.ErrataTimeout)
	}
}

// DisconnectTask reboots through the watchdog when a connected bus drops.
// It does nothing unless Config.ResetOnDisconnect is set.
func (u *USB) DisconnectTask() {
	if !u.cfg.ResetOnDisconnect {
		return
	}
	connected := u.bus.Load(reg.USBSIEStatus)&reg.SIEStatusConnected != 0
	if connected {
		u.wasConnected = true
		return
	}
	if !u.wasConnected {
		return
	}
	pkg.LogWarn(pkg.ComponentHAL, "usb connection lost, resetting chip")
	u.wasConnected = false
	u.bus.Store(reg.WatchdogCtrl, reg.WatchdogCtrlTrigger)
}
