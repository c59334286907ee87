package pipeline

import (
	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/ironsheep/pgm-stego/internal/stego"
)

// EmbedResult describes a single embed run.
type EmbedResult struct {
	Output     string       `json:"output"`
	Format     string       `json:"format"`
	Distortion *stego.Stats `json:"distortion"`
}

// EmbedFiles hides the raster at secretPath inside the raster at coverPath and
// writes the result to outPath. Inputs may be in either form.
func EmbedFiles(coverPath, secretPath, outPath string, format raster.Format, d raster.Dims) (*EmbedResult, error) {
	cover, err := raster.LoadFile(coverPath, d)
	if err != nil {
		return nil, &StageError{Stage: StageDecodeCover, Err: err}
	}
	secret, err := raster.LoadFile(secretPath, d)
	if err != nil {
		return nil, &StageError{Stage: StageDecodeSecret, Err: err}
	}
	return EmbedImages(cover, secret, outPath, format)
}

// EmbedImages embeds secret in cover and writes the stego raster to outPath.
func EmbedImages(cover, secret *raster.Image, outPath string, format raster.Format) (*EmbedResult, error) {
	embedded, err := stego.Embed(cover, secret)
	if err != nil {
		return nil, &StageError{Stage: StageEmbed, Err: err}
	}
	if err := raster.SaveFile(outPath, embedded, format); err != nil {
		return nil, &StageError{Stage: StageWriteStego, Err: err}
	}
	st, err := stego.Compare(cover, embedded)
	if err != nil {
		return nil, &StageError{Stage: StageEmbed, Err: err}
	}
	return &EmbedResult{Output: outPath, Format: format.String(), Distortion: st}, nil
}

// ExtractResult describes a single extract run.
type ExtractResult struct {
	Output string      `json:"output"`
	Format string      `json:"format"`
	Dims   raster.Dims `json:"dims"`
}

// ExtractFile recovers the secret hidden in the raster at stegoPath and
// writes it to outPath.
func ExtractFile(stegoPath, outPath string, format raster.Format, d raster.Dims) (*ExtractResult, error) {
	img, err := raster.LoadFile(stegoPath, d)
	if err != nil {
		return nil, &StageError{Stage: StageDecodeStego, Err: err}
	}
	return ExtractImage(img, outPath, format)
}

// ExtractImage recovers the secret from img and writes it to outPath.
func ExtractImage(img *raster.Image, outPath string, format raster.Format) (*ExtractResult, error) {
	recovered, err := stego.Extract(img)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	if err := raster.SaveFile(outPath, recovered, format); err != nil {
		return nil, &StageError{Stage: StageWriteRecovered, Err: err}
	}
	return &ExtractResult{Output: outPath, Format: format.String(), Dims: recovered.Dims}, nil
}

// CompareFiles computes distortion statistics between two raster files.
func CompareFiles(aPath, bPath string, d raster.Dims) (*stego.Stats, error) {
	a, err := raster.LoadFile(aPath, d)
	if err != nil {
		return nil, err
	}
	b, err := raster.LoadFile(bPath, d)
	if err != nil {
		return nil, err
	}
	return stego.Compare(a, b)
}
