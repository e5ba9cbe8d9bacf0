package infra

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	qrModulePx    = 12
	qrPadding     = 40
	qrCaptionBand = 50
)

var (
	qrFront   = color.RGBA{R: 30, G: 58, B: 138, A: 255}
	qrBack    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	qrCaption = color.RGBA{R: 100, G: 116, B: 139, A: 255}
)

type QREncoder struct {
	level qrcode.RecoveryLevel
}

var _ ports.QREncoder = (*QREncoder)(nil)

// NewQREncoder uses the highest recovery level so the padded, recoloured
// code still scans.
func NewQREncoder() *QREncoder {
	return &QREncoder{level: qrcode.Highest}
}

func (e *QREncoder) Encode(data, caption string) ([]byte, error) {
	if strings.TrimSpace(data) == "" {
		return nil, fmt.Errorf("%w: empty data", models.ErrEncoding)
	}

	q, err := qrcode.New(data, e.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrEncoding, err)
	}
	q.ForegroundColor = qrFront
	q.BackgroundColor = qrBack

	code := q.Image(-qrModulePx)
	qrW, qrH := code.Bounds().Dx(), code.Bounds().Dy()

	canvas := imaging.New(qrW+qrPadding*2, qrH+qrPadding+qrCaptionBand+qrPadding, qrBack)
	canvas = imaging.Paste(canvas, code, image.Pt(qrPadding, qrPadding/2))

	if caption != "" {
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(qrCaption),
			Face: basicfont.Face7x13,
		}
		tw := d.MeasureString(caption).Round()
		x := (canvas.Bounds().Dx() - tw) / 2
		if x < 0 {
			x = 0
		}
		d.Dot = fixed.P(x, qrH+qrPadding+basicfont.Face7x13.Ascent)
		d.DrawString(caption)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: png: %w", models.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
