package rp2040

import (
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/pkg"
)

// Register adds Init and the driver tasks to the scheduler.
func (u *USB) Register() {
	u.sched.AddInit("usbserial_init", u.Init)
	u.sched.AddTask("usb_errata", u.ErrataTask)
	if u.cfg.ResetOnDisconnect {
		u.sched.AddTask("usb_disconnect", u.DisconnectTask)
	}
}

// Init brings up the controller in device mode and attaches to the bus.
func (u *USB) Init() {
	u.resets.Enable(reg.ResetUSBCtrl)

	for off := uintptr(0); off < reg.DPRAMSize; off += 4 {
		u.bus.Store(reg.DPRAMBase+off, 0)
	}
	u.endpointSetup()

	u.bus.Store(reg.USBMuxing, reg.MuxingToPhy|reg.MuxingSoftCon)
	u.bus.Store(reg.USBPwr, reg.PwrVbusDetect|reg.PwrVbusDetectOverrideEn)
	u.bus.Store(reg.USBMainCtrl, reg.MainCtrlControllerEn)

	u.resets.Enable(reg.ResetSysinfo)
	chipID := u.bus.Load(reg.SysinfoChipID)
	u.revision = (chipID & reg.ChipIDRevisionMask) >> reg.ChipIDRevisionShift
	u.errata = u.revision == u.cfg.ErrataRevision

	u.irqMask = reg.IntBuffStatus | reg.IntSetupReq
	if u.errata {
		u.irqMask |= reg.IntBusReset
	}
	u.bus.Store(reg.USBSIECtrl, reg.SIECtrlEP0Int1Buf)
	u.bus.Store(reg.USBInte, u.irqMask)
	u.irq.EnableIRQ(u, reg.USBCtrlIRQ, u.cfg.IRQPriority)

	u.bus.Store(reg.USBSIECtrl, reg.SIECtrlEP0Int1Buf|reg.SIECtrlPullupEn)

	pkg.LogInfo(pkg.ComponentHAL, "usb controller enabled",
		"revision", u.revision,
		"errata", u.errata,
		"bulk_out", u.cfg.BulkOutEndpoint,
		"bulk_in", u.cfg.BulkInEndpoint)
}

func (u *USB) endpointSetup() {
	acm := u.cfg.ACMEndpoint
	u.bus.Store(reg.EPCtrlIn(acm), epCtrl(acm, true, reg.TransferInterrupt, false))

	out := u.cfg.BulkOutEndpoint
	u.bus.Store(reg.EPCtrlOut(out), epCtrl(out, false, reg.TransferBulk, true))

	in := u.cfg.BulkInEndpoint
	u.bus.Store(reg.EPCtrlIn(in), epCtrl(in, true, reg.TransferBulk, true))

	// Sends report not ready until SetConfigured; the first packet after
	// it goes out as DATA0.
	u.bus.Store(reg.EPBufCtrlIn(in), reg.BufCtrlFull|reg.BufCtrlData1PID)
}

func epCtrl(ep uint8, in bool, transfer uint32, perBuffer bool) uint32 {
	v := reg.EPCtrlEnable | uint32(bufferAddr(ep, in)-reg.DPRAMBase) |
		transfer<<reg.EPCtrlBufferTypeShift
	if perBuffer {
		v |= reg.EPCtrlInterruptPerBuffer
	}
	return v
}
