package service

import (
	"github.com/skip2/go-qrcode"
)

// QRContentType is the media type of Encode's output.
const QRContentType = "image/png"

// QREncoder renders URLs as PNG QR codes.
type QREncoder struct {
	size int
}

func NewQREncoder(size int) *QREncoder {
	if size <= 0 {
		size = 256
	}
	return &QREncoder{size: size}
}

// Encode returns a PNG of url at Medium error correction.
func (e *QREncoder) Encode(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, e.size)
}
