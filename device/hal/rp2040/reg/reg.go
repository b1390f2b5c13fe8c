// Package reg describes the RP2040 registers used by the USB serial driver.
//
// Addresses are absolute physical addresses. Peripheral registers (but not
// the USB DPRAM) also answer at three alias windows that perform atomic
// XOR, set and clear of the written bits.
package reg

// Peripheral base addresses.
const (
	SysinfoBase   uintptr = 0x40000000
	ResetsBase    uintptr = 0x4000c000
	IOBank0Base   uintptr = 0x40014000
	PadsBank0Base uintptr = 0x4001c000
	TimerBase     uintptr = 0x40054000
	WatchdogBase  uintptr = 0x40058000
	DPRAMBase     uintptr = 0x50100000
	USBBase       uintptr = 0x50110000
)

// Atomic access alias offsets, added to a peripheral register address.
const (
	AliasXor   uintptr = 0x1000
	AliasSet   uintptr = 0x2000
	AliasClear uintptr = 0x3000
	AliasMask  uintptr = 0x3000
)

// USBCtrlIRQ is the NVIC line of the USB controller.
const USBCtrlIRQ = 5

// USB controller registers.
const (
	USBDevAddrCtrl        = USBBase + 0x00 // Device address
	USBMainCtrl           = USBBase + 0x40 // Main control
	USBSIECtrl            = USBBase + 0x4c // SIE control
	USBSIEStatus          = USBBase + 0x50 // SIE status (mostly write-1-to-clear)
	USBBuffStatus         = USBBase + 0x58 // Buffer completion bitmap (write-1-to-clear)
	USBEPStallArm         = USBBase + 0x68 // EP0 stall arm
	USBMuxing             = USBBase + 0x74 // PHY/pad muxing
	USBPwr                = USBBase + 0x78 // VBUS overrides
	USBPhyDirect          = USBBase + 0x7c // Direct PHY control
	USBPhyDirectOverride  = USBBase + 0x80 // Direct PHY control enables
	USBIntr               = USBBase + 0x8c // Raw interrupts
	USBInte               = USBBase + 0x90 // Interrupt enable
	USBIntf               = USBBase + 0x94 // Interrupt force
	USBInts               = USBBase + 0x98 // Interrupt status after masking
	USBRegisterWindowSize = 0x9c
)

// MAIN_CTRL bits.
const (
	MainCtrlControllerEn = 1 << 0
	MainCtrlHostNDevice  = 1 << 1
)

// SIE_CTRL bits.
const (
	SIECtrlPullupEn   = 1 << 16
	SIECtrlEP0Int1Buf = 1 << 29
)

// SIE_STATUS bits.
const (
	SIEStatusVbusDetected = 1 << 0
	SIEStatusLineState    = 3 << 2
	SIEStatusSuspended    = 1 << 4
	SIEStatusConnected    = 1 << 16
	SIEStatusSetupRec     = 1 << 17
	SIEStatusBusReset     = 1 << 19
)

// SIEStatusLineStateShift positions a line state value in SIE_STATUS.
const SIEStatusLineStateShift = 2

// Bus line states reported in SIE_STATUS.LINE_STATE.
const (
	LineStateSE0 = 0
	LineStateJ   = 1
	LineStateK   = 2
)

// INTR, INTE, INTF and INTS bits.
const (
	IntBuffStatus = 1 << 4
	IntBusReset   = 1 << 12
	IntSetupReq   = 1 << 16
)

// EP_STALL_ARM bits.
const (
	EPStallArmEP0In  = 1 << 0
	EPStallArmEP0Out = 1 << 1
	EPStallArmEP0    = EPStallArmEP0In | EPStallArmEP0Out
)

// USB_MUXING bits.
const (
	MuxingToPhy        = 1 << 0
	MuxingToExtPhy     = 1 << 1
	MuxingToDigitalPad = 1 << 2
	MuxingSoftCon      = 1 << 3
)

// USB_PWR bits.
const (
	PwrVbusDetect           = 1 << 2
	PwrVbusDetectOverrideEn = 1 << 3
)

// USBPHY_DIRECT and USBPHY_DIRECT_OVERRIDE bits.
const (
	PhyDirectDPPullupEn           = 1 << 1
	PhyDirectOverrideDPPullupEnEn = 1 << 2
)

// DPRAM layout.
const (
	DPRAMSize = 0x1000

	// SetupPacket holds the eight bytes of the last SETUP packet.
	SetupPacket = DPRAMBase + 0x000

	// EP0Buffer is the fixed hardware buffer used by EP0 in both directions.
	EP0Buffer = DPRAMBase + 0x100

	// EPBufferBase is the offset from which software-placed buffers start.
	EPBufferBase = 0x100
)

// MaxEndpoints is the number of endpoint numbers (0-15).
const MaxEndpoints = 16

// EPCtrlIn returns the IN endpoint control register of endpoint ep (1-15).
func EPCtrlIn(ep uint8) uintptr {
	return DPRAMBase + 0x08 + uintptr(ep-1)*8
}

// EPCtrlOut returns the OUT endpoint control register of endpoint ep (1-15).
func EPCtrlOut(ep uint8) uintptr {
	return DPRAMBase + 0x0c + uintptr(ep-1)*8
}

// EPBufCtrlIn returns the IN buffer control word of endpoint ep (0-15).
func EPBufCtrlIn(ep uint8) uintptr {
	return DPRAMBase + 0x80 + uintptr(ep)*8
}

// EPBufCtrlOut returns the OUT buffer control word of endpoint ep (0-15).
func EPBufCtrlOut(ep uint8) uintptr {
	return DPRAMBase + 0x84 + uintptr(ep)*8
}

// Endpoint control register bits.
const (
	EPCtrlEnable                   = 1 << 31
	EPCtrlDoubleBuffered           = 1 << 30
	EPCtrlInterruptPerBuffer       = 1 << 29
	EPCtrlInterruptPerDoubleBuffer = 1 << 28
	EPCtrlBufferTypeShift          = 26
	EPCtrlBufferAddrMask           = 0xffc0
)

// USB transfer types as encoded in EP_CTRL.BUFFER_TYPE.
const (
	TransferControl     = 0
	TransferIsochronous = 1
	TransferBulk        = 2
	TransferInterrupt   = 3
)

// Buffer control word bits.
const (
	BufCtrlFull      = 1 << 15
	BufCtrlLast      = 1 << 14
	BufCtrlData1PID  = 1 << 13
	BufCtrlReset     = 1 << 12
	BufCtrlStall     = 1 << 11
	BufCtrlAvailable = 1 << 10
	BufCtrlLenMask   = 0x3ff
)

// BuffStatusIn returns the BUFF_STATUS bit of the IN direction of ep.
func BuffStatusIn(ep uint8) uint32 {
	return 1 << (uint32(ep) * 2)
}

// BuffStatusOut returns the BUFF_STATUS bit of the OUT direction of ep.
func BuffStatusOut(ep uint8) uint32 {
	return 1 << (uint32(ep)*2 + 1)
}

// RESETS registers and domains.
const (
	ResetsReset     = ResetsBase + 0x00
	ResetsResetDone = ResetsBase + 0x08

	ResetSysinfo = 1 << 19
	ResetUSBCtrl = 1 << 24
)

// SYSINFO registers.
const (
	SysinfoChipID = SysinfoBase + 0x00

	ChipIDRevisionShift = 28
	ChipIDRevisionMask  = 0xf << ChipIDRevisionShift
)

// TimerRawL reads the low word of the 1 MHz system timer.
const TimerRawL = TimerBase + 0x28

// WATCHDOG registers.
const (
	WatchdogCtrl        = WatchdogBase + 0x00
	WatchdogCtrlTrigger = 1 << 31
)

// GPIODP is the pad carrying USB D+ when muxed to the USB debug function.
const GPIODP = 15

// IOBank0Ctrl returns the GPIO control register of pin n.
func IOBank0Ctrl(n uint8) uintptr {
	return IOBank0Base + uintptr(n)*8 + 4
}

// GPIO control register fields.
const (
	GPIOCtrlFuncselMask = 0x1f << 0
	GPIOCtrlOEOverShift = 12
	GPIOCtrlOEOverMask  = 3 << GPIOCtrlOEOverShift
	GPIOCtrlInOverShift = 16
	GPIOCtrlInOverMask  = 3 << GPIOCtrlInOverShift
	GPIOFuncUSBDebugMux = 8
	GPIOOEOverDisable   = 2
	GPIOInOverForceHigh = 3
)

// PadsBank0GPIO returns the pad control register of pin n.
func PadsBank0GPIO(n uint8) uintptr {
	return PadsBank0Base + 4 + uintptr(n)*4
}

// Pad control bits.
const (
	PadPDE = 1 << 2
	PadPUE = 1 << 3
)
