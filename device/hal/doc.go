// Package hal defines the contracts between a USB device controller driver
// and the USB serial protocol layer above it.
//
// The driver side is [Transport]: a handful of non-blocking packet
// primitives on the control endpoint and one bulk IN/OUT pair. The protocol
// side is [Notifier]: callbacks the driver raises from interrupt context
// when an endpoint may have changed state.
//
// # Polling Contract
//
// Notifications are hints, not queued events. On any notification the
// protocol layer re-invokes the relevant primitive; a primitive that finds
// nothing to do returns [github.com/TheContrappostoShop/klipper/pkg.ErrNotReady].
//
//	func (s *Serial) OnBulkReceiveReady() { s.wake.Set() }
//
//	func (s *Serial) Task() {
//	    for {
//	        n, err := s.usb.ReceiveBulk(s.buf[:])
//	        if err != nil {
//	            return
//	        }
//	        s.consume(s.buf[:n])
//	    }
//	}
//
// # Zero-Allocation Design
//
// Drivers implementing [Transport] copy directly between caller buffers and
// controller memory and allocate nothing per packet.
//
// An RP2040 implementation is available in
// [github.com/TheContrappostoShop/klipper/device/hal/rp2040].
package hal
