package cdc

import "encoding/binary"

// String descriptor indexes.
const (
	stringLanguage = iota
	stringManufacturer
	stringProduct
	stringSerial
	numStrings
)

// LangIDUSEnglish is the language ID for US English.
const LangIDUSEnglish = 0x0409

// Identity is what the device reports about itself during enumeration.
type Identity struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Serial       string
}

// DefaultIdentity uses the OpenMoko VID/PID pair assigned to Klipper.
var DefaultIdentity = Identity{
	VendorID:     0x1d50,
	ProductID:    0x614e,
	Manufacturer: "Klipper",
	Product:      "rp2040",
	Serial:       "12345",
}

// Endpoints are the endpoint numbers the driver was configured with.
type Endpoints struct {
	ACM     uint8
	BulkOut uint8
	BulkIn  uint8
}

// descriptors holds the serialized descriptor set served on GET_DESCRIPTOR.
type descriptors struct {
	device  []byte
	config  []byte
	strings [numStrings][]byte
}

func buildDescriptors(id Identity, ep Endpoints) descriptors {
	var d descriptors

	d.device = make([]byte, 18)
	d.device[0] = 18
	d.device[1] = DescriptorTypeDevice
	binary.LittleEndian.PutUint16(d.device[2:4], 0x0200)
	d.device[4] = ClassCDC
	d.device[7] = PacketSize
	binary.LittleEndian.PutUint16(d.device[8:10], id.VendorID)
	binary.LittleEndian.PutUint16(d.device[10:12], id.ProductID)
	binary.LittleEndian.PutUint16(d.device[12:14], 0x0100)
	d.device[14] = stringManufacturer
	d.device[15] = stringProduct
	d.device[16] = stringSerial
	d.device[17] = 1

	c := make([]byte, 9, 67)
	c[0] = 9
	c[1] = DescriptorTypeConfiguration
	c[4] = 2    // interfaces
	c[5] = 1    // configuration value
	c[7] = 0xc0 // self powered
	c[8] = 50   // 100 mA

	// Communications interface with its functional descriptors.
	c = append(c, 9, DescriptorTypeInterface, 0, 0, 1, ClassCDC, SubclassACM, ProtocolNone, 0)
	c = append(c, 5, DescriptorTypeCSInterface, SubtypeHeader, 0x10, 0x01)
	c = append(c, 5, DescriptorTypeCSInterface, SubtypeCallManagement, 0, 1)
	c = append(c, 4, DescriptorTypeCSInterface, SubtypeACM, ACMCapLineCoding)
	c = append(c, 5, DescriptorTypeCSInterface, SubtypeUnion, 0, 1)
	c = appendEndpoint(c, ep.ACM|EndpointDirectionIn, EndpointTypeInterrupt, 8, 255)

	// Data interface.
	c = append(c, 9, DescriptorTypeInterface, 1, 0, 2, ClassCDCData, 0, 0, 0)
	c = appendEndpoint(c, ep.BulkOut, EndpointTypeBulk, PacketSize, 0)
	c = appendEndpoint(c, ep.BulkIn|EndpointDirectionIn, EndpointTypeBulk, PacketSize, 0)
	binary.LittleEndian.PutUint16(c[2:4], uint16(len(c)))
	d.config = c

	d.strings[stringLanguage] = []byte{4, DescriptorTypeString, byte(LangIDUSEnglish & 0xff), byte(LangIDUSEnglish >> 8)}
	d.strings[stringManufacturer] = stringDescriptor(id.Manufacturer)
	d.strings[stringProduct] = stringDescriptor(id.Product)
	d.strings[stringSerial] = stringDescriptor(id.Serial)
	return d
}

func appendEndpoint(b []byte, addr, attr uint8, size uint16, interval uint8) []byte {
	return append(b, 7, DescriptorTypeEndpoint, addr, attr, byte(size), byte(size>>8), interval)
}

// stringDescriptor encodes s as a UTF-16LE string descriptor. Characters
// outside the BMP are not supported.
func stringDescriptor(s string) []byte {
	runes := []rune(s)
	if len(runes) > 126 {
		runes = runes[:126]
	}
	b := make([]byte, 2+len(runes)*2)
	b[0] = byte(len(b))
	b[1] = DescriptorTypeString
	for i, r := range runes {
		binary.LittleEndian.PutUint16(b[2+i*2:], uint16(r))
	}
	return b
}

// lookup returns the descriptor selected by the wValue of GET_DESCRIPTOR,
// or nil.
func (d *descriptors) lookup(value uint16) []byte {
	index := uint8(value)
	switch uint8(value >> 8) {
	case DescriptorTypeDevice:
		return d.device
	case DescriptorTypeConfiguration:
		return d.config
	case DescriptorTypeString:
		if index < numStrings {
			return d.strings[index]
		}
	}
	return nil
}
