package cdc

import (
	"sync"
	"sync/atomic"

	"github.com/TheContrappostoShop/klipper/device/hal"
	"github.com/TheContrappostoShop/klipper/pkg"
	"github.com/TheContrappostoShop/klipper/pkg/sched"
)

// PacketSize is the max packet size of EP0 and the bulk endpoints.
const PacketSize = 64

// MaxRxBufferSize is the receive buffer size.
const MaxRxBufferSize = 4096

// MaxTxBufferSize is the transmit buffer size.
const MaxTxBufferSize = 4096

// Scheduler registers and wakes the class tasks.
// *sched.Scheduler implements it.
type Scheduler interface {
	AddTask(name string, fn func())
	WakeTask(w *sched.Wake)
}

type controlState uint8

const (
	stateSetup controlState = iota
	stateDataIn
	stateDataOut
)

// ACM implements a CDC-ACM serial port on top of a packet transport.
//
// The tasks and the notifications are driven by the scheduler; Read and
// Write may be called from any goroutine.
type ACM struct {
	usb   hal.Transport
	sched Scheduler
	desc  descriptors

	controlWake sched.Wake
	rxWake      sched.Wake
	txWake      sched.Wake

	// Control state, task context only
	state         controlState
	setup         hal.SetupPacket
	xfer          []byte
	xferZLP       bool
	configuration uint8

	configured atomic.Bool

	// Buffers (zero-allocation)
	setupBuf [hal.SetupPacketSize]byte
	ep0Buf   [PacketSize]byte
	rxPacket [PacketSize]byte
	txPacket [PacketSize]byte
	txLen    int
	rxStore  [MaxRxBufferSize]byte
	txStore  [MaxTxBufferSize]byte

	mutex                sync.Mutex
	rx                   ring
	tx                   ring
	lineCoding           LineCoding
	controlLine          uint16
	onLineCodingChange   func(LineCoding)
	onControlStateChange func(dtr, rts bool)
}

// NewACM creates a CDC-ACM class reporting id and advertising the
// endpoints in ep.
func NewACM(s Scheduler, id Identity, ep Endpoints) *ACM {
	a := &ACM{
		sched:      s,
		desc:       buildDescriptors(id, ep),
		lineCoding: DefaultLineCoding,
	}
	a.rx.buf = a.rxStore[:]
	a.tx.buf = a.txStore[:]
	return a
}

// SetTransport sets the transport the class drives. It must be called
// before the scheduler runs the class tasks.
func (a *ACM) SetTransport(t hal.Transport) {
	a.usb = t
}

// Register adds the class tasks to the scheduler.
func (a *ACM) Register() {
	a.sched.AddTask("usb_ep0", a.ControlTask)
	a.sched.AddTask("usb_bulk", a.BulkTask)
}

// SetOnLineCodingChange sets the callback for line coding changes.
func (a *ACM) SetOnLineCodingChange(cb func(LineCoding)) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.onLineCodingChange = cb
}

// SetOnControlStateChange sets the callback for DTR/RTS changes.
func (a *ACM) SetOnControlStateChange(cb func(dtr, rts bool)) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.onControlStateChange = cb
}

// LineCoding returns the current line coding configuration.
func (a *ACM) LineCoding() LineCoding {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.lineCoding
}

// DTR returns the current DTR (Data Terminal Ready) state.
func (a *ACM) DTR() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.controlLine&ControlLineDTR != 0
}

// RTS returns the current RTS (Request To Send) state.
func (a *ACM) RTS() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.controlLine&ControlLineRTS != 0
}

// Configured reports whether the host has selected the configuration.
func (a *ACM) Configured() bool {
	return a.configured.Load()
}

// OnControlEvent implements hal.Notifier.
func (a *ACM) OnControlEvent() {
	a.sched.WakeTask(&a.controlWake)
}

// OnBulkReceiveReady implements hal.Notifier.
func (a *ACM) OnBulkReceiveReady() {
	a.sched.WakeTask(&a.rxWake)
}

// OnBulkSendReady implements hal.Notifier.
func (a *ACM) OnBulkSendReady() {
	a.sched.WakeTask(&a.txWake)
}

// Read copies received serial data into buf without blocking.
func (a *ACM) Read(buf []byte) int {
	a.mutex.Lock()
	n := a.rx.Read(buf)
	a.mutex.Unlock()
	if n > 0 {
		// Room may have opened for a packet held back by the controller.
		a.sched.WakeTask(&a.rxWake)
	}
	return n
}

// Write queues data for transmission and returns how much was accepted.
func (a *ACM) Write(data []byte) int {
	a.mutex.Lock()
	n := a.tx.Write(data)
	a.mutex.Unlock()
	if n > 0 {
		a.sched.WakeTask(&a.txWake)
	}
	return n
}

// ControlTask advances EP0 transfers after a control event.
func (a *ACM) ControlTask() {
	if a.usb == nil || !a.controlWake.Check() {
		return
	}
	switch a.state {
	case stateDataIn:
		a.continueIn()
	case stateDataOut:
		a.continueOut()
	default:
		a.handleSetup()
	}
}

func (a *ACM) handleSetup() {
	n, err := a.usb.ReadSetup(a.setupBuf[:])
	if err != nil {
		return
	}
	if !hal.ParseSetupPacket(a.setupBuf[:n], &a.setup) {
		a.stall()
		return
	}
	pkg.LogDebug(pkg.ComponentSerial, "setup",
		"type", a.setup.RequestType,
		"request", a.setup.Request,
		"value", a.setup.Value,
		"length", a.setup.Length)

	if a.setup.RequestType&hal.RequestTypeMask == hal.RequestTypeClass {
		a.handleClass()
		return
	}
	a.handleStandard()
}

func (a *ACM) handleStandard() {
	switch a.setup.Request {
	case hal.RequestGetDescriptor:
		data := a.desc.lookup(a.setup.Value)
		if data == nil {
			a.stall()
			return
		}
		a.sendData(data)
	case hal.RequestSetAddress:
		a.usb.SetAddress(uint8(a.setup.Value & 0x7f))
	case hal.RequestSetConfiguration:
		a.configuration = uint8(a.setup.Value)
		if a.configuration != 0 {
			a.usb.SetConfigured()
			a.configured.Store(true)
			pkg.LogInfo(pkg.ComponentSerial, "configured")
		}
		a.sendStatus()
	case RequestGetConfiguration:
		a.ep0Buf[0] = a.configuration
		a.sendData(a.ep0Buf[:1])
	case RequestGetStatus:
		a.ep0Buf[0], a.ep0Buf[1] = 0, 0
		a.sendData(a.ep0Buf[:2])
	default:
		a.stall()
	}
}

func (a *ACM) handleClass() {
	switch a.setup.Request {
	case hal.RequestSetLineCoding:
		a.state = stateDataOut
		a.continueOut()
	case hal.RequestGetLineCoding:
		a.mutex.Lock()
		n := a.lineCoding.MarshalTo(a.ep0Buf[:])
		a.mutex.Unlock()
		a.sendData(a.ep0Buf[:n])
	case hal.RequestSetControlLineState:
		a.mutex.Lock()
		a.controlLine = a.setup.Value
		cb := a.onControlStateChange
		a.mutex.Unlock()
		dtr := a.setup.Value&ControlLineDTR != 0
		rts := a.setup.Value&ControlLineRTS != 0
		pkg.LogDebug(pkg.ComponentSerial, "control line state set", "dtr", dtr, "rts", rts)
		if cb != nil {
			cb(dtr, rts)
		}
		a.sendStatus()
	case RequestSendBreak:
		a.sendStatus()
	default:
		a.stall()
	}
}

func (a *ACM) stall() {
	a.usb.StallControl()
	a.endTransfer()
}

func (a *ACM) endTransfer() {
	a.state = stateSetup
	a.xfer = nil
	a.xferZLP = false
}

// sendData starts an IN data stage, truncated to what the host asked for.
func (a *ACM) sendData(data []byte) {
	if len(data) > int(a.setup.Length) {
		data = data[:a.setup.Length]
	}
	a.xfer = data
	a.xferZLP = len(data) < int(a.setup.Length) && len(data)%PacketSize == 0
	a.state = stateDataIn
	a.continueIn()
}

// sendStatus sends the zero-length status stage of a no-data request.
func (a *ACM) sendStatus() {
	a.xfer = nil
	a.xferZLP = false
	a.state = stateDataIn
	a.continueIn()
}

func (a *ACM) continueIn() {
	for {
		n := min(len(a.xfer), PacketSize)
		_, err := a.usb.SendControlData(a.xfer[:n])
		switch pkg.StatusOf(err) {
		case pkg.PollStatusNotReady:
			return
		case pkg.PollStatusEarlyTermination, pkg.PollStatusError:
			// The host moved on; the next SETUP is already pending.
			a.endTransfer()
			a.sched.WakeTask(&a.controlWake)
			return
		}
		a.xfer = a.xfer[n:]
		if n < PacketSize || (len(a.xfer) == 0 && !a.xferZLP) {
			a.endTransfer()
			return
		}
	}
}

func (a *ACM) continueOut() {
	n, err := a.usb.ReadControlData(a.ep0Buf[:])
	switch pkg.StatusOf(err) {
	case pkg.PollStatusNotReady:
		return
	case pkg.PollStatusEarlyTermination, pkg.PollStatusError:
		a.endTransfer()
		a.sched.WakeTask(&a.controlWake)
		return
	}
	var lc LineCoding
	if !ParseLineCoding(a.ep0Buf[:n], &lc) {
		a.stall()
		return
	}
	a.mutex.Lock()
	a.lineCoding = lc
	cb := a.onLineCodingChange
	a.mutex.Unlock()

	pkg.LogDebug(pkg.ComponentSerial, "line coding set",
		"baud", lc.DTERate,
		"dataBits", lc.DataBits,
		"parity", lc.ParityType,
		"stopBits", lc.CharFormat)
	if cb != nil {
		cb(lc)
	}
	a.sendStatus()
}

// BulkTask moves data between the bulk endpoints and the serial buffers.
func (a *ACM) BulkTask() {
	if a.usb == nil || !a.configured.Load() {
		return
	}
	a.receive()
	a.transmit()
}

func (a *ACM) receive() {
	if !a.rxWake.Check() {
		return
	}
	for {
		a.mutex.Lock()
		free := a.rx.Free()
		a.mutex.Unlock()
		if free < PacketSize {
			// Leave the packet with the controller until Read makes room.
			a.rxWake.Set()
			return
		}
		n, err := a.usb.ReceiveBulk(a.rxPacket[:])
		if err != nil {
			return
		}
		a.mutex.Lock()
		a.rx.Write(a.rxPacket[:n])
		a.mutex.Unlock()
	}
}

func (a *ACM) transmit() {
	if !a.txWake.Check() {
		return
	}
	for {
		if a.txLen == 0 {
			a.mutex.Lock()
			a.txLen = a.tx.Read(a.txPacket[:])
			a.mutex.Unlock()
			if a.txLen == 0 {
				return
			}
		}
		if _, err := a.usb.SendBulk(a.txPacket[:a.txLen]); err != nil {
			return
		}
		a.txLen = 0
	}
}

// Compile-time interface check
var _ hal.Notifier = (*ACM)(nil)
