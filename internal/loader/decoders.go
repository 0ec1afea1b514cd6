package loader

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Byte signatures for the built-in chain. A decoder whose signature does not
// match returns Unsupported so the next one is tried; a matching signature
// with a broken payload is a FormatError.
var (
	pngMagic     = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic    = []byte{0xff, 0xd8, 0xff}
	gifMagic     = []byte("GIF8")
	bmpMagic     = []byte("BM")
	tiffMagicLE  = []byte{'I', 'I', 0x2a, 0x00}
	tiffMagicBE  = []byte{'M', 'M', 0x00, 0x2a}
	riffMagic    = []byte("RIFF")
	webpSubMagic = []byte("WEBP")
)

func hasMagic(data, magic []byte) bool {
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic)
}

// stillImage wraps a single decoded frame into a payload.
func stillImage(img image.Image) *Image {
	bounds := img.Bounds()
	return &Image{
		Frames: []Frame{{Pixels: img, Alpha: hasAlpha(img)}},
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}

// hasAlpha reports whether the image may carry transparency.
func hasAlpha(img image.Image) bool {
	if op, ok := img.(interface{ Opaque() bool }); ok {
		return !op.Opaque()
	}
	return false
}

func decodePNG(data []byte) (*Image, Status, error) {
	if !hasMagic(data, pngMagic) {
		return nil, Unsupported, nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, FormatError, fmt.Errorf("decode png: %w", err)
	}
	return stillImage(img), Success, nil
}

func decodeJPEG(data []byte) (*Image, Status, error) {
	if !hasMagic(data, jpegMagic) {
		return nil, Unsupported, nil
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, FormatError, fmt.Errorf("decode jpeg: %w", err)
	}
	out := stillImage(img)
	enrichEXIF(data, out)
	return out, Success, nil
}

func decodeGIF(data []byte) (*Image, Status, error) {
	if !hasMagic(data, gifMagic) {
		return nil, Unsupported, nil
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, FormatError, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, FormatError, fmt.Errorf("decode gif: no frames")
	}
	out := &Image{
		Width:  g.Config.Width,
		Height: g.Config.Height,
		Frames: make([]Frame, 0, len(g.Image)),
	}
	for i, frame := range g.Image {
		// gif delays are in hundredths of a second
		delay := time.Duration(g.Delay[i]) * 10 * time.Millisecond
		out.Frames = append(out.Frames, Frame{
			Pixels: frame,
			Delay:  delay,
			Alpha:  hasAlpha(frame),
		})
	}
	if len(out.Frames) > 1 {
		out.Meta = append(out.Meta, MetaLine{Key: "Frames", Value: fmt.Sprintf("%d", len(out.Frames))})
	}
	return out, Success, nil
}

func decodeBMP(data []byte) (*Image, Status, error) {
	if !hasMagic(data, bmpMagic) {
		return nil, Unsupported, nil
	}
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, FormatError, fmt.Errorf("decode bmp: %w", err)
	}
	return stillImage(img), Success, nil
}

func decodeTIFF(data []byte) (*Image, Status, error) {
	if !hasMagic(data, tiffMagicLE) && !hasMagic(data, tiffMagicBE) {
		return nil, Unsupported, nil
	}
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, FormatError, fmt.Errorf("decode tiff: %w", err)
	}
	out := stillImage(img)
	enrichEXIF(data, out)
	return out, Success, nil
}

func decodeWebP(data []byte) (*Image, Status, error) {
	if !hasMagic(data, riffMagic) {
		return nil, Unsupported, nil
	}
	if len(data) < 12 || !bytes.Equal(data[8:12], webpSubMagic) {
		return nil, Unsupported, nil
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, FormatError, fmt.Errorf("decode webp: %w", err)
	}
	return stillImage(img), Success, nil
}
