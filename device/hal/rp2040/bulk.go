package rp2040

// ReceiveBulk copies one packet from the bulk OUT endpoint into buf.
func (u *USB) ReceiveBulk(buf []byte) (int, error) {
	return u.readPacket(u.cfg.BulkOutEndpoint, buf)
}

// SendBulk queues one packet on the bulk IN endpoint.
func (u *USB) SendBulk(data []byte) (int, error) {
	return u.writePacket(u.cfg.BulkInEndpoint, data)
}
