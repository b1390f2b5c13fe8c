// Package rp2040 implements the USB serial transport on the RP2040's
// integrated full speed USB controller.
//
// The driver exposes the non-blocking packet primitives of
// [github.com/TheContrappostoShop/klipper/device/hal.Transport] on EP0 and
// one bulk IN/OUT pair, and reports endpoint activity through a
// [github.com/TheContrappostoShop/klipper/device/hal.Notifier].
//
// # Buffer Handshake
//
// Every endpoint direction owns one 64-byte buffer in the controller's
// DPRAM and one buffer control word. Software fills or drains the buffer
// while the AVAILABLE bit is clear and then sets AVAILABLE in a second,
// separate write to hand the buffer to the controller. The controller
// clears AVAILABLE (and sets FULL for OUT) when it is done. No locks are
// involved: each transition of a word is made by exactly one side.
//
// # Contexts
//
// HandleIRQ runs in interrupt context and only raises notifications,
// acknowledges completions, applies a pending device address and wakes the
// errata task. Everything else runs in the cooperative task context.
//
// # RP2040-E5
//
// B0/B1 silicon can fail to leave the bus reset state and so never
// enumerate. On those revisions Init enables the bus reset interrupt and
// ErrataTask forces a J state on D+ through the GPIO pad for about a
// millisecond, then restores the pad.
//
// # Platform
//
// Register access, the timer, resets, interrupt routing, the scheduler and
// the boot ROM are reached through the interfaces in [Platform]. A
// simulated controller implementing all of them lives in the sim
// subpackage.
//
//	usb, err := rp2040.New(platform, serial, rp2040.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	usb.Register()
package rp2040
