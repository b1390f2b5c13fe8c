package hal

// SetupPacket represents a USB SETUP packet in the HAL layer.
// This is a fixed-size, zero-allocation structure for SETUP transactions.
type SetupPacket struct {
	RequestType uint8  // Request characteristics
	Request     uint8  // Specific request
	Value       uint16 // Request-specific value
	Index       uint16 // Request-specific index
	Length      uint16 // Number of bytes to transfer
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// ParseSetupPacket parses raw bytes into a SetupPacket.
// Returns false if data is too short.
func ParseSetupPacket(data []byte, out *SetupPacket) bool {
	if len(data) < SetupPacketSize {
		return false
	}
	out.RequestType = data[0]
	out.Request = data[1]
	out.Value = uint16(data[2]) | uint16(data[3])<<8
	out.Index = uint16(data[4]) | uint16(data[5])<<8
	out.Length = uint16(data[6]) | uint16(data[7])<<8
	return true
}

// MarshalTo writes the setup packet to buf.
// Returns the number of bytes written (8), or 0 if buf is too small.
func (s *SetupPacket) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Request
	buf[2] = byte(s.Value)
	buf[3] = byte(s.Value >> 8)
	buf[4] = byte(s.Index)
	buf[5] = byte(s.Index >> 8)
	buf[6] = byte(s.Length)
	buf[7] = byte(s.Length >> 8)
	return SetupPacketSize
}

// IsDeviceToHost reports whether the data stage (if any) is an IN stage.
func (s *SetupPacket) IsDeviceToHost() bool {
	return s.RequestType&RequestDirectionIn != 0
}

// Request type fields and the requests the CDC-ACM upper layer handles.
const (
	RequestDirectionIn = 0x80
	RequestTypeClass   = 0x20
	RequestTypeMask    = 0x60

	RequestSetAddress       = 0x05
	RequestGetDescriptor    = 0x06
	RequestSetConfiguration = 0x09

	RequestSetLineCoding       = 0x20
	RequestGetLineCoding       = 0x21
	RequestSetControlLineState = 0x22
)

// Transport is the packet-level interface a device controller driver
// exposes to the USB/CDC-ACM protocol layer above it.
//
// No method blocks. Buffers that are not yet available are reported with
// pkg.ErrNotReady and the caller polls again after the next notification.
// Control data stages cut short by the host are reported with
// pkg.ErrEarlyTermination.
type Transport interface {
	// ReceiveBulk copies one packet from the bulk OUT endpoint into buf.
	ReceiveBulk(buf []byte) (int, error)

	// SendBulk queues one packet on the bulk IN endpoint.
	SendBulk(data []byte) (int, error)

	// ReadSetup copies the pending SETUP packet into buf.
	ReadSetup(buf []byte) (int, error)

	// ReadControlData copies one EP0 OUT data packet into buf.
	ReadControlData(buf []byte) (int, error)

	// SendControlData queues one EP0 IN data packet. A nil slice sends a
	// zero-length packet.
	SendControlData(data []byte) (int, error)

	// StallControl stalls both directions of EP0 until the next SETUP.
	StallControl()

	// SetAddress acknowledges SET_ADDRESS; the address takes effect once
	// the status stage completes.
	SetAddress(addr uint8)

	// SetConfigured arms the bulk endpoints after SET_CONFIGURATION.
	SetConfigured()

	// RequestBootloader reboots into the ROM bootloader. On hardware it
	// does not return.
	RequestBootloader()
}

// Notifier receives edge-triggered notifications from the driver's
// interrupt handler. A notification means "poll again"; it carries no data
// and consecutive notifications may be merged.
type Notifier interface {
	// OnControlEvent is raised for SETUP packets, EP0 completions and stalls.
	OnControlEvent()

	// OnBulkReceiveReady is raised when a bulk OUT packet has arrived.
	OnBulkReceiveReady()

	// OnBulkSendReady is raised when a bulk IN packet has been sent.
	OnBulkSendReady()
}
