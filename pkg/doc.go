// Package pkg provides shared utilities for the USB serial transport.
//
// This package contains common functionality used by the RP2040 driver, its
// simulator and the cooperative scheduler, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel errors for the transport's poll results
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with component context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentHAL, "usb controller enabled", "revision", 1)
//
// # Errors
//
// Poll results are reported as sentinel values:
//
//	n, err := usb.ReceiveBulk(buf)
//	if errors.Is(err, pkg.ErrNotReady) {
//	    // Nothing received yet; wait for the next notification
//	}
package pkg
