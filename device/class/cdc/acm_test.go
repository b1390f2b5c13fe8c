package cdc_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheContrappostoShop/klipper/device/class/cdc"
	"github.com/TheContrappostoShop/klipper/device/hal"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/reg"
	"github.com/TheContrappostoShop/klipper/device/hal/rp2040/sim"
	"github.com/TheContrappostoShop/klipper/pkg"
	"github.com/TheContrappostoShop/klipper/pkg/sched"
)

type bench struct {
	acm   *cdc.ACM
	usb   *rp2040.USB
	sim   *sim.Peripheral
	sched *sched.Scheduler
	host  *sim.Host
}

func newBench(t *testing.T) *bench {
	t.Helper()
	return newBenchWith(t, cdc.DefaultIdentity)
}

func newBenchWith(t *testing.T, id cdc.Identity) *bench {
	t.Helper()
	b := &bench{
		sim:   sim.New(sim.DefaultConfig()),
		sched: sched.New(),
	}
	cfg := rp2040.DefaultConfig()
	b.acm = cdc.NewACM(b.sched, id, cdc.Endpoints{
		ACM:     cfg.ACMEndpoint,
		BulkOut: cfg.BulkOutEndpoint,
		BulkIn:  cfg.BulkInEndpoint,
	})
	usb, err := rp2040.New(rp2040.Platform{
		Bus:        b.sim,
		Clock:      b.sim,
		Resets:     b.sim,
		IRQ:        b.sim,
		Scheduler:  b.sched,
		Bootloader: b.sim,
	}, b.acm, cfg)
	require.NoError(t, err)
	b.usb = usb
	b.acm.SetTransport(usb)
	usb.Register()
	b.acm.Register()
	b.sched.Init()
	b.host = sim.NewHost(b.sim, b.sched.RunOnce)
	return b
}

func (b *bench) control(t *testing.T, pkt hal.SetupPacket, data []byte) []byte {
	t.Helper()
	got, err := b.host.Control(pkt, data)
	require.NoError(t, err)
	return got
}

func getDescriptor(kind, index uint8, length uint16) hal.SetupPacket {
	return hal.SetupPacket{
		RequestType: hal.RequestDirectionIn,
		Request:     hal.RequestGetDescriptor,
		Value:       uint16(kind)<<8 | uint16(index),
		Length:      length,
	}
}

// enumerate runs the requests a host issues before opening the port.
func (b *bench) enumerate(t *testing.T) {
	t.Helper()
	b.host.Reset()
	b.control(t, getDescriptor(cdc.DescriptorTypeDevice, 0, 64), nil)
	b.control(t, hal.SetupPacket{Request: hal.RequestSetAddress, Value: 7}, nil)
	require.Equal(t, uint8(7), b.sim.DeviceAddress())
	b.control(t, hal.SetupPacket{Request: hal.RequestSetConfiguration, Value: 1}, nil)
	require.True(t, b.acm.Configured())
}

func TestDescriptors(t *testing.T) {
	b := newBench(t)
	b.host.Reset()

	dev := b.control(t, getDescriptor(cdc.DescriptorTypeDevice, 0, 18), nil)
	require.Len(t, dev, 18)
	assert.Equal(t, uint8(cdc.ClassCDC), dev[4])
	assert.Equal(t, uint8(64), dev[7])
	assert.Equal(t, cdc.DefaultIdentity.VendorID, binary.LittleEndian.Uint16(dev[8:]))
	assert.Equal(t, cdc.DefaultIdentity.ProductID, binary.LittleEndian.Uint16(dev[10:]))

	// Hosts read the header first, then the whole set; the full set spans
	// two packets.
	head := b.control(t, getDescriptor(cdc.DescriptorTypeConfiguration, 0, 9), nil)
	require.Len(t, head, 9)
	total := binary.LittleEndian.Uint16(head[2:])
	assert.Equal(t, uint16(67), total)

	config := b.control(t, getDescriptor(cdc.DescriptorTypeConfiguration, 0, 255), nil)
	require.Len(t, config, int(total))
	assert.Equal(t, head, config[:9])
	assert.True(t, bytes.Contains(config, []byte{7, cdc.DescriptorTypeEndpoint, 0x83, cdc.EndpointTypeBulk, 64, 0, 0}))
	assert.True(t, bytes.Contains(config, []byte{7, cdc.DescriptorTypeEndpoint, 0x02, cdc.EndpointTypeBulk, 64, 0, 0}))

	product := b.control(t, getDescriptor(cdc.DescriptorTypeString, 2, 255), nil)
	assert.Equal(t, []byte{14, cdc.DescriptorTypeString, 'r', 0, 'p', 0, '2', 0}, product[:8])

	_, err := b.host.Control(getDescriptor(cdc.DescriptorTypeString, 9, 255), nil)
	assert.ErrorIs(t, err, pkg.ErrStall)

	// A stall only lasts until the next SETUP.
	lang := b.control(t, getDescriptor(cdc.DescriptorTypeString, 0, 255), nil)
	assert.Equal(t, []byte{4, cdc.DescriptorTypeString, 0x09, 0x04}, lang)
}

func TestDataStageTruncatedToLength(t *testing.T) {
	b := newBench(t)
	b.host.Reset()

	// 64 of 67 bytes: one full packet and no terminating ZLP.
	got := b.control(t, getDescriptor(cdc.DescriptorTypeConfiguration, 0, 64), nil)
	assert.Len(t, got, 64)
}

func TestShortDataStageEndsWithZeroLengthPacket(t *testing.T) {
	id := cdc.DefaultIdentity
	id.Serial = "0123456789012345678901234567890"
	b := newBenchWith(t, id)
	b.host.Reset()
	b.host.MaxNAKs = 5

	// A 64 byte descriptor shorter than requested needs a ZLP to end the
	// data stage; without it the host would keep polling.
	got := b.control(t, getDescriptor(cdc.DescriptorTypeString, 3, 255), nil)
	assert.Len(t, got, 64)
}

func TestLineCoding(t *testing.T) {
	b := newBench(t)
	b.enumerate(t)

	var changed []cdc.LineCoding
	b.acm.SetOnLineCodingChange(func(lc cdc.LineCoding) {
		changed = append(changed, lc)
	})

	want := cdc.LineCoding{DTERate: 115200, ParityType: 2, DataBits: 7}
	var raw [cdc.LineCodingSize]byte
	want.MarshalTo(raw[:])
	b.control(t, hal.SetupPacket{
		RequestType: hal.RequestTypeClass | 0x01,
		Request:     hal.RequestSetLineCoding,
		Length:      cdc.LineCodingSize,
	}, raw[:])
	assert.Equal(t, want, b.acm.LineCoding())
	assert.Equal(t, []cdc.LineCoding{want}, changed)

	got := b.control(t, hal.SetupPacket{
		RequestType: hal.RequestDirectionIn | hal.RequestTypeClass | 0x01,
		Request:     hal.RequestGetLineCoding,
		Length:      cdc.LineCodingSize,
	}, nil)
	assert.Equal(t, raw[:], got)
}

func TestControlLineState(t *testing.T) {
	b := newBench(t)
	b.enumerate(t)

	var dtr, rts bool
	b.acm.SetOnControlStateChange(func(d, r bool) { dtr, rts = d, r })
	b.control(t, hal.SetupPacket{
		RequestType: hal.RequestTypeClass | 0x01,
		Request:     hal.RequestSetControlLineState,
		Value:       cdc.ControlLineDTR,
	}, nil)

	assert.True(t, b.acm.DTR())
	assert.False(t, b.acm.RTS())
	assert.True(t, dtr)
	assert.False(t, rts)
}

func TestUnsupportedRequestStalls(t *testing.T) {
	b := newBench(t)
	b.enumerate(t)

	_, err := b.host.Control(hal.SetupPacket{
		RequestType: hal.RequestDirectionIn | 0x40,
		Request:     0x99,
		Length:      4,
	}, nil)
	assert.ErrorIs(t, err, pkg.ErrStall)

	got := b.control(t, hal.SetupPacket{
		RequestType: hal.RequestDirectionIn,
		Request:     cdc.RequestGetConfiguration,
		Length:      1,
	}, nil)
	assert.Equal(t, []byte{1}, got)
}

func TestEcho(t *testing.T) {
	b := newBench(t)
	b.enumerate(t)
	b.sched.AddTask("echo", func() {
		var buf [cdc.PacketSize]byte
		if n := b.acm.Read(buf[:]); n > 0 {
			b.acm.Write(buf[:n])
		}
	})

	buf := make([]byte, cdc.PacketSize)
	for _, msg := range []string{"hello", "G28", string(bytes.Repeat([]byte{'x'}, 64))} {
		require.NoError(t, b.host.OutPacket(2, []byte(msg)))
		n, err := b.host.InPacket(3, buf)
		require.NoError(t, err)
		assert.Equal(t, msg, string(buf[:n]))
	}
}

func TestWriteSplitsIntoPackets(t *testing.T) {
	b := newBench(t)
	b.enumerate(t)

	data := bytes.Repeat([]byte("0123456789"), 15)
	assert.Equal(t, len(data), b.acm.Write(data))

	var got []byte
	buf := make([]byte, cdc.PacketSize)
	for len(got) < len(data) {
		n, err := b.host.InPacket(3, buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, data, got)
}

func TestTransmitIdlesUntilSendCompletes(t *testing.T) {
	b := newBench(t)
	b.enumerate(t)

	data := bytes.Repeat([]byte("G1 X10\n"), 20)
	require.Equal(t, len(data), b.acm.Write(data))
	b.sched.RunOnce()

	// The first packet is queued in the controller; the second waits for
	// its completion instead of polling the endpoint every pass.
	var touched int
	b.sim.SetHook(func(addr uintptr) {
		if addr == reg.EPBufCtrlIn(3) {
			touched++
		}
	})
	for range 3 {
		b.sched.RunOnce()
	}
	assert.Zero(t, touched)

	buf := make([]byte, cdc.PacketSize)
	n, err := b.host.InPacket(3, buf)
	require.NoError(t, err)
	assert.Equal(t, data[:cdc.PacketSize], buf[:n])

	b.sched.RunOnce()
	assert.NotZero(t, touched)
	n, err = b.sim.In(3, buf)
	require.NoError(t, err)
	assert.Equal(t, data[cdc.PacketSize:2*cdc.PacketSize], buf[:n])
}

func TestWriteBeforeConfigurationIsSentAfter(t *testing.T) {
	b := newBench(t)
	b.host.Reset()
	require.Equal(t, 2, b.acm.Write([]byte("ok")))
	b.sched.RunOnce()

	b.enumerate(t)
	buf := make([]byte, cdc.PacketSize)
	n, err := b.host.InPacket(3, buf)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(buf[:n]))
}

func TestNothingBeforeConfiguration(t *testing.T) {
	b := newBench(t)
	b.host.Reset()

	assert.Equal(t, 3, b.acm.Write([]byte("abc")))
	b.sched.RunOnce()
	_, err := b.sim.In(3, make([]byte, cdc.PacketSize))
	assert.ErrorIs(t, err, pkg.ErrNAK)
	assert.ErrorIs(t, b.sim.Out(2, []byte("x")), pkg.ErrNAK)
}
