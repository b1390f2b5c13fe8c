package rp2040

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/sim"
)

func errataSim() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Revision = 1
	return cfg
}

func TestHandleIRQBufferStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  uint32
		receive int
		send    int
		control int
	}{
		{"bulk out", reg.BuffStatusOut(2), 1, 0, 0},
		{"bulk in", reg.BuffStatusIn(3), 0, 1, 0},
		{"both bulk", reg.BuffStatusOut(2) | reg.BuffStatusIn(3), 1, 1, 0},
		{"ep0 in", reg.BuffStatusIn(0), 0, 0, 1},
		{"ep0 both", reg.BuffStatusIn(0) | reg.BuffStatusOut(0), 0, 0, 1},
		{"unused endpoints", reg.BuffStatusIn(2) | reg.BuffStatusOut(3) | reg.BuffStatusIn(1), 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, sim.DefaultConfig(), DefaultConfig())
			f.notify.EXPECT().OnBulkReceiveReady().Times(tt.receive)
			f.notify.EXPECT().OnBulkSendReady().Times(tt.send)
			f.notify.EXPECT().OnControlEvent().Times(tt.control)

			f.sim.Poke(reg.USBBuffStatus, tt.status)
			f.usb.HandleIRQ()
			assert.Zero(t, f.sim.Peek(reg.USBBuffStatus))
		})
	}
}

func TestHandleIRQSetup(t *testing.T) {
	f := newFixture(t, sim.DefaultConfig(), DefaultConfig())
	f.notify.EXPECT().OnControlEvent().Times(1)

	f.sim.Setup(setAddress)
	assert.Equal(t, uint32(reg.IntBuffStatus), f.sim.Peek(reg.USBInte))

	// Still pending, but masked.
	assert.NotZero(t, f.sim.Peek(reg.USBIntr)&reg.IntSetupReq)
	assert.Zero(t, f.sim.Peek(reg.USBInts))
}

func TestHandleIRQSetupLeavesBusResetArmed(t *testing.T) {
	f := newFixture(t, errataSim(), DefaultConfig())
	f.notify.EXPECT().OnControlEvent().Times(1)

	f.sim.Setup(setAddress)
	assert.Equal(t, uint32(reg.IntBuffStatus|reg.IntBusReset), f.sim.Peek(reg.USBInte))

	// A reset before the SETUP is read must still be acknowledged and
	// reach the errata task.
	f.sim.BusReset()
	assert.Zero(t, f.sim.Peek(reg.USBSIEStatus)&reg.SIEStatusBusReset)
	assert.True(t, f.usb.errataWake.Pending())
}

func TestHandleIRQBusReset(t *testing.T) {
	f := newFixture(t, errataSim(), DefaultConfig())

	f.sim.BusReset()
	assert.Zero(t, f.sim.Peek(reg.USBSIEStatus)&reg.SIEStatusBusReset)
	assert.True(t, f.usb.errataWake.Pending())
}

func TestHandleIRQBusResetWithoutErrata(t *testing.T) {
	f := newFixture(t, sim.DefaultConfig(), DefaultConfig())

	f.sim.BusReset()
	assert.NotZero(t, f.sim.Peek(reg.USBSIEStatus)&reg.SIEStatusBusReset)
	assert.False(t, f.usb.errataWake.Pending())
}

func TestHandleIRQWakesErrataTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := sim.New(errataSim())
	s := NewMockScheduler(ctrl)
	usb, err := New(platformFor(p, s), NewMockNotifier(ctrl), DefaultConfig())
	require.NoError(t, err)
	usb.Init()

	s.EXPECT().WakeTask(&usb.errataWake).Times(1)
	p.BusReset()
}
