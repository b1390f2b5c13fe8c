package pkg

import "errors"

// Transport poll results.
var (
	// ErrNotReady indicates the endpoint buffer is not available yet.
	// It is the normal "poll again later" result, not a failure.
	ErrNotReady = errors.New("endpoint not ready")

	// ErrEarlyTermination indicates the host abandoned a control data
	// phase by sending a new SETUP packet or completing the status stage.
	ErrEarlyTermination = errors.New("control transfer terminated early")

	// ErrPacketTooLarge indicates a write larger than one packet buffer.
	ErrPacketTooLarge = errors.New("packet exceeds buffer size")
)

// USB protocol errors.
var (
	// ErrStall indicates an endpoint stall condition.
	ErrStall = errors.New("endpoint stalled")

	// ErrNAK indicates a NAK response (device busy).
	ErrNAK = errors.New("NAK received")

	// ErrTimeout indicates a transfer timeout.
	ErrTimeout = errors.New("transfer timeout")

	// ErrInvalidEndpoint indicates an invalid endpoint address.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// PollStatus classifies the result of a transport primitive.
type PollStatus int

// Poll status values.
const (
	PollStatusOK               PollStatus = iota // Packet transferred
	PollStatusNotReady                           // Buffer not available yet
	PollStatusEarlyTermination                   // Control data phase aborted by host
	PollStatusError                              // Any other error
)

// StatusOf classifies err as returned by a transport primitive.
func StatusOf(err error) PollStatus {
	switch {
	case err == nil:
		return PollStatusOK
	case errors.Is(err, ErrNotReady):
		return PollStatusNotReady
	case errors.Is(err, ErrEarlyTermination):
		return PollStatusEarlyTermination
	default:
		return PollStatusError
	}
}

// String returns a string representation of the poll status.
func (s PollStatus) String() string {
	switch s {
	case PollStatusOK:
		return "ok"
	case PollStatusNotReady:
		return "not-ready"
	case PollStatusEarlyTermination:
		return "early-termination"
	case PollStatusError:
		return "error"
	default:
		return "unknown"
	}
}
