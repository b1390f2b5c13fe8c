// Package cdc implements a CDC-ACM serial port on a packet-level USB
// device transport.
//
// The ACM class answers the handful of standard requests a full speed
// serial device needs (descriptors, address, configuration, status) and
// the ACM class requests (line coding and control line state). Bulk data
// is buffered in fixed-size receive and transmit FIFOs.
//
// # Contexts
//
// The transport's interrupt handler reports activity through the
// [github.com/TheContrappostoShop/klipper/device/hal.Notifier] methods,
// which only wake tasks. ControlTask and BulkTask do the work in the
// scheduler's task context by polling the transport until it reports
// pkg.ErrNotReady.
//
// # Usage
//
//	s := sched.New()
//	acm := cdc.NewACM(s, cdc.DefaultIdentity, cdc.Endpoints{ACM: 1, BulkOut: 2, BulkIn: 3})
//	usb, err := rp2040.New(platform, acm, rp2040.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	acm.SetTransport(usb)
//	usb.Register()
//	acm.Register()
//	s.Run(ctx)
package cdc
