package loader

import (
	"bytes"
	"image"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// exifFields are the tags surfaced as metadata lines, in display order.
var exifFields = []exif.FieldName{
	exif.DateTime,
	exif.Make,
	exif.Model,
	exif.ExposureTime,
	exif.FNumber,
	exif.ISOSpeedRatings,
	exif.FocalLength,
}

// enrichEXIF extracts common EXIF fields from the raw bytes, appends them as
// metadata lines, and bakes the orientation tag into the frames. Missing or
// unparsable EXIF data is not an error; most PNGs and many JPEGs have none.
func enrichEXIF(data []byte, img *Image) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	for _, field := range exifFields {
		tag, err := x.Get(field)
		if err != nil || tag == nil {
			continue
		}
		img.Meta = append(img.Meta, MetaLine{Key: string(field), Value: tag.String()})
	}
	if tag, err := x.Get(exif.Orientation); err == nil && tag != nil {
		if orientation, err := tag.Int(0); err == nil {
			applyOrientation(img, orientation)
		}
	}
}

// applyOrientation rotates/flips every frame so the pixels are upright, then
// fixes up the payload dimensions. Orientation values follow the EXIF spec;
// 1 (upright) and anything out of range are left alone.
func applyOrientation(img *Image, orientation int) {
	var transform func(image.Image) image.Image
	switch orientation {
	case 2:
		transform = func(m image.Image) image.Image { return imaging.FlipH(m) }
	case 3:
		transform = func(m image.Image) image.Image { return imaging.Rotate180(m) }
	case 4:
		transform = func(m image.Image) image.Image { return imaging.FlipV(m) }
	case 5:
		transform = func(m image.Image) image.Image { return imaging.Transpose(m) }
	case 6:
		transform = func(m image.Image) image.Image { return imaging.Rotate270(m) }
	case 7:
		transform = func(m image.Image) image.Image { return imaging.Transverse(m) }
	case 8:
		transform = func(m image.Image) image.Image { return imaging.Rotate90(m) }
	default:
		return
	}
	for i := range img.Frames {
		img.Frames[i].Pixels = transform(img.Frames[i].Pixels)
	}
	if len(img.Frames) > 0 {
		bounds := img.Frames[0].Pixels.Bounds()
		img.Width = bounds.Dx()
		img.Height = bounds.Dy()
	}
	img.Meta = append(img.Meta, MetaLine{Key: "Orientation", Value: strconv.Itoa(orientation)})
}
