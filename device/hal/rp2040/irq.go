package rp2040

import "github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"

// HandleIRQ is the USB controller interrupt entry point.
func (u *USB) HandleIRQ() {
	ints := u.bus.Load(reg.USBInts)
	if ints&reg.IntSetupReq != 0 {
		// Keep further SETUPs from re-raising until ReadSetup re-arms.
		// BUS_RESET stays armed so a reset during enumeration still
		// reaches the errata task.
		u.bus.Store(reg.USBInte, u.irqMask&^reg.IntSetupReq)
		u.notify.OnControlEvent()
	}
	if ints&reg.IntBuffStatus != 0 {
		u.handleBufferStatus()
	}
	if ints&reg.IntBusReset != 0 {
		u.bus.Store(reg.USBSIEStatus, reg.SIEStatusBusReset)
		u.sched.WakeTask(&u.errataWake)
	}
}

func (u *USB) handleBufferStatus() {
	status := u.bus.Load(reg.USBBuffStatus)
	u.bus.Store(reg.USBBuffStatus, status)

	if status&reg.BuffStatusOut(u.cfg.BulkOutEndpoint) != 0 {
		u.notify.OnBulkReceiveReady()
	}
	if status&reg.BuffStatusIn(u.cfg.BulkInEndpoint) != 0 {
		u.notify.OnBulkSendReady()
	}
	if status&(reg.BuffStatusIn(0)|reg.BuffStatusOut(0)) == 0 {
		return
	}
	u.notify.OnControlEvent()
	if status&reg.BuffStatusIn(0) != 0 {
		// Status stage of SET_ADDRESS went out on EP0 IN; only now may the
		// device answer on the new address.
		if addr := u.address.Swap(0); addr != 0 {
			u.bus.Store(reg.USBDevAddrCtrl, addr)
		}
	}
}
