package ports

type QREncoder interface {
	// Encode returns a PNG with the QR code of data and caption below it.
	Encode(data, caption string) ([]byte, error)
}
