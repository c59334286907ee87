package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"io"
	"io/fs"

	"github.com/disintegration/imaging"
)

// Gray returns m as a standard library grayscale image with origin (0,0).
func (m *Image) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}

// FromImage converts any decoded image to an 8-bit grayscale raster of size d.
//
// Images whose bounds differ from d are scaled and center-cropped to fill d
// (imaging.Fill with a Lanczos filter) so the fixed-dimension contract holds.
// Color images are reduced to luminance with imaging.Grayscale.
func FromImage(src image.Image, d Dims) (*Image, error) {
	if !d.Valid() {
		return nil, invariantError("import", ErrLengthMismatch, "invalid dimensions %s", d)
	}

	var fitted image.Image = src
	if b := src.Bounds(); b.Dx() != d.Width || b.Dy() != d.Height {
		fitted = imaging.Fill(src, d.Width, d.Height, imaging.Center, imaging.Lanczos)
	}
	gray := imaging.Grayscale(fitted)

	pix := make([]uint8, d.Pixels())
	for y := 0; y < d.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < d.Width; x++ {
			// Grayscale sets R=G=B; alpha is ignored.
			pix[y*d.Width+x] = row[x*4]
		}
	}
	return &Image{Dims: d, Pix: pix}, nil
}

// ImportFile decodes a PNG, JPEG, GIF, BMP or TIFF file and converts it with FromImage.
func ImportFile(path string, d Dims) (*Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, ioError("open", path, err)
		}
		return nil, &Error{Kind: KindFormat, Op: "import", Path: path, Err: err}
	}
	img, err := FromImage(src, d)
	if err != nil {
		return nil, withPath(err, path)
	}
	return img, nil
}

// MaxScale bounds the scale accepted by the export and preview functions.
const MaxScale = 8

func checkScale(op string, scale float64) error {
	if !(scale > 0) || scale > MaxScale {
		return invariantError(op, ErrInvalidScale, "got %g, want 0 < scale <= %d", scale, MaxScale)
	}
	return nil
}

// ExportPNG writes img as a PNG. A scale other than 1 resizes the output with
// nearest-neighbor sampling so individual samples stay visible. The scale
// must be in (0, MaxScale].
func ExportPNG(w io.Writer, img *Image, scale float64) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if err := checkScale("export png", scale); err != nil {
		return err
	}
	if err := imaging.Encode(w, scaled(img, scale), imaging.PNG); err != nil {
		return ioError("encode png", "", err)
	}
	return nil
}

// ExportPNGFile writes img to path. The encoder follows the file extension
// (.png, .jpg, .gif, .bmp, .tif), as imaging.Save does.
func ExportPNGFile(path string, img *Image, scale float64) error {
	if err := img.Validate(); err != nil {
		return withPath(err, path)
	}
	if err := checkScale("save png", scale); err != nil {
		return withPath(err, path)
	}
	if err := imaging.Save(scaled(img, scale), path); err != nil {
		return ioError("save png", path, err)
	}
	return nil
}

func scaled(img *Image, scale float64) image.Image {
	var out image.Image = img.Gray()
	if scale != 1.0 {
		w := max(1, int(float64(img.Width)*scale))
		h := max(1, int(float64(img.Height)*scale))
		out = imaging.Resize(out, w, h, imaging.NearestNeighbor)
	}
	return out
}

// Preview contains a raster rendered as a base64 PNG.
type Preview struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// PreviewBase64 renders img as a base64-encoded PNG, scaled by scale, which
// must be in (0, MaxScale].
func PreviewBase64(img *Image, scale float64) (*Preview, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := checkScale("preview", scale); err != nil {
		return nil, err
	}
	out := scaled(img, scale)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, ioError("encode png", "", err)
	}

	return &Preview{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
