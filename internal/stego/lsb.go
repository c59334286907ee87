package stego

import (
	"github.com/ironsheep/pgm-stego/internal/raster"
)

const (
	// Bits is the number of low-order bits of each cover sample that carry payload.
	Bits = 4

	// HighMask selects the nibble of a cover sample that embedding preserves.
	HighMask uint8 = 0xF0

	// LowMask selects the nibble of a stego sample that carries payload.
	LowMask uint8 = 0x0F
)

// EmbedSample hides the high nibble of s in the low nibble of c.
func EmbedSample(c, s uint8) uint8 {
	return (c & HighMask) | (s >> Bits)
}

// ExtractSample moves the payload nibble of v back into the high nibble.
func ExtractSample(v uint8) uint8 {
	return (v & LowMask) << Bits
}

// Embed returns a new raster holding secret inside cover. Neither input is modified.
//
// cover and secret must both be valid and have identical dimensions; anything
// else is an invariant violation (raster.KindInvariant), since the codec
// already enforces the dimension contract when the rasters are decoded.
func Embed(cover, secret *raster.Image) (*raster.Image, error) {
	if err := checkPair("embed", cover, secret); err != nil {
		return nil, err
	}
	out := &raster.Image{Dims: cover.Dims, Pix: make([]uint8, len(cover.Pix))}
	embed(out.Pix, cover.Pix, secret.Pix)
	return out, nil
}

// EmbedInPlace overwrites cover with the stego samples.
func EmbedInPlace(cover, secret *raster.Image) error {
	if err := checkPair("embed", cover, secret); err != nil {
		return err
	}
	embed(cover.Pix, cover.Pix, secret.Pix)
	return nil
}

func embed(dst, cover, secret []uint8) {
	for i := range dst {
		dst[i] = EmbedSample(cover[i], secret[i])
	}
}

// Extract returns a new raster holding the recovered approximation of the
// secret hidden in stego.
func Extract(stego *raster.Image) (*raster.Image, error) {
	if err := stego.Validate(); err != nil {
		return nil, err
	}
	out := &raster.Image{Dims: stego.Dims, Pix: make([]uint8, len(stego.Pix))}
	extract(out.Pix, stego.Pix)
	return out, nil
}

// ExtractInto writes the recovered secret into dst, which must have the same
// dimensions as stego. dst and stego may be the same raster.
func ExtractInto(dst, stego *raster.Image) error {
	if err := checkPair("extract", dst, stego); err != nil {
		return err
	}
	extract(dst.Pix, stego.Pix)
	return nil
}

func extract(dst, stego []uint8) {
	for i := range dst {
		dst[i] = ExtractSample(stego[i])
	}
}

func checkPair(op string, a, b *raster.Image) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if !raster.SameDims(a, b) {
		return raster.InvariantError(op, "dimensions %s and %s differ", a.Dims, b.Dims)
	}
	return nil
}
