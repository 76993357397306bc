// Package qrcode renders URLs as QR code PNG images wrapped in data URIs.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

var ErrEmptyContent = errors.New("qrcode: empty content")

// Options controls rendering. Size is the image width in pixels and
// Margin the quiet zone in modules.
type Options struct {
	Size   int
	Margin int
	Dark   string
	Light  string
}

func DefaultOptions() Options {
	return Options{Size: 300, Margin: 2, Dark: "#000000", Light: "#FFFFFF"}
}

// Encoder turns content into QR code images.
type Encoder struct {
	level goqrcode.RecoveryLevel
}

func NewEncoder() *Encoder {
	return &Encoder{level: goqrcode.Medium}
}

// DataURI returns content encoded as a PNG data URI.
func (e *Encoder) DataURI(content string, opts Options) (string, error) {
	img, err := e.PNG(content, opts)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(img), nil
}

// PNG returns content encoded as PNG bytes.
func (e *Encoder) PNG(content string, opts Options) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	opts = withDefaults(opts)
	dark, err := parseHexColor(opts.Dark)
	if err != nil {
		return nil, err
	}
	light, err := parseHexColor(opts.Light)
	if err != nil {
		return nil, err
	}

	q, err := goqrcode.New(content, e.level)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}
	q.DisableBorder = true

	var buf bytes.Buffer
	if err := png.Encode(&buf, render(q.Bitmap(), opts.Size, opts.Margin, dark, light)); err != nil {
		return nil, fmt.Errorf("qrcode: png: %w", err)
	}
	return buf.Bytes(), nil
}

func withDefaults(o Options) Options {
	d := DefaultOptions()
	if o.Size <= 0 {
		o.Size = d.Size
	}
	if o.Margin < 0 {
		o.Margin = d.Margin
	}
	if o.Dark == "" {
		o.Dark = d.Dark
	}
	if o.Light == "" {
		o.Light = d.Light
	}
	return o
}

// render draws the module bitmap at an integer scale, centred in a
// size x size image. The image grows when size is too small for one
// pixel per module.
func render(bitmap [][]bool, size, margin int, dark, light color.Color) image.Image {
	modules := len(bitmap) + 2*margin
	scale := size / modules
	if scale < 1 {
		scale = 1
	}
	if size < modules*scale {
		size = modules * scale
	}
	offset := (size-modules*scale)/2 + margin*scale

	palette := color.Palette{light, dark}
	img := image.NewPaletted(image.Rect(0, 0, size, size), palette)
	for y, row := range bitmap {
		for x, on := range row {
			if !on {
				continue
			}
			px, py := offset+x*scale, offset+y*scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetColorIndex(px+dx, py+dy, 1)
				}
			}
		}
	}
	return img
}

// parseHexColor accepts #RRGGBB or #RRGGBBAA.
func parseHexColor(s string) (color.Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return nil, fmt.Errorf("qrcode: invalid color %q", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("qrcode: invalid color %q", s)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}
