package stego

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/lucasb-eyer/go-colorful"
)

// MaxPSNR is reported for identical rasters, whose true PSNR is infinite.
const MaxPSNR = 100.0

// Stats describes how far one raster is from another.
type Stats struct {
	Dims raster.Dims `json:"dims"`

	// MSE is the mean squared error over all samples.
	MSE float64 `json:"mse"`

	// PSNR is the peak signal-to-noise ratio in decibels for 8-bit samples,
	// or MaxPSNR when the rasters are identical.
	PSNR float64 `json:"psnr_db"`

	// MaxAbsDiff is the largest absolute per-sample difference (0-255).
	MaxAbsDiff int `json:"max_abs_diff"`

	// Changed is the number of samples that differ.
	Changed        int     `json:"changed"`
	ChangedPercent float64 `json:"changed_percent"`

	Identical bool `json:"identical"`
}

// Compare computes distortion statistics between two rasters of equal dimensions.
func Compare(a, b *raster.Image) (*Stats, error) {
	if err := checkPair("compare", a, b); err != nil {
		return nil, err
	}

	var sumSq float64
	st := &Stats{Dims: a.Dims}
	for i, av := range a.Pix {
		d := int(av) - int(b.Pix[i])
		if d == 0 {
			continue
		}
		if d < 0 {
			d = -d
		}
		st.Changed++
		if d > st.MaxAbsDiff {
			st.MaxAbsDiff = d
		}
		sumSq += float64(d * d)
	}

	n := float64(len(a.Pix))
	st.MSE = sumSq / n
	st.ChangedPercent = float64(st.Changed) / n * 100
	if st.Changed == 0 {
		st.Identical = true
		st.PSNR = MaxPSNR
	} else {
		st.PSNR = math.Min(MaxPSNR, 10*math.Log10(255*255/st.MSE))
	}
	return st, nil
}

// DiffImage renders the per-sample difference between a and b as a heatmap.
//
// Unchanged samples are black. Changed samples run from blue (small) to red
// (large); gain multiplies the difference before mapping, so a gain of 17
// spreads the 0-15 range that 4-bit embedding can introduce over the full
// palette. A gain <= 0 is treated as 1.
func DiffImage(a, b *raster.Image, gain float64) (*image.RGBA, error) {
	if err := checkPair("diff", a, b); err != nil {
		return nil, err
	}
	if gain <= 0 {
		gain = 1
	}

	diff := blend.Difference(a.Gray(), b.Gray())
	bounds := diff.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d := diff.RGBAAt(x, y).R
			if d == 0 {
				out.SetRGBA(x, y, color.RGBA{A: 0xFF})
				continue
			}
			t := math.Min(1, float64(d)*gain/255)
			r, g, bl := colorful.Hsv(240*(1-t), 1, 1).Clamped().RGB255()
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: bl, A: 0xFF})
		}
	}
	return out, nil
}
