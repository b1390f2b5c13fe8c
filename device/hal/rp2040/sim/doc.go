// Package sim simulates the parts of the RP2040 that the USB serial driver
// touches: the USB controller registers and DPRAM, RESETS, SYSINFO, the
// timer, the watchdog and GPIO 15.
//
// A [Peripheral] implements every platform interface of the rp2040 package,
// so a driver can be created on it directly. The host side of the bus is
// driven with [Peripheral.BusReset], [Peripheral.Setup], [Peripheral.Out]
// and [Peripheral.In], which follow the buffer handshake the way the
// controller does: a packet is only accepted or produced when software has
// set AVAILABLE, and completion is reported in BUFF_STATUS.
//
// Interrupts are level-triggered. After any access that can change INTR or
// INTE the registered handler is called synchronously for as long as an
// enabled interrupt is pending.
package sim
