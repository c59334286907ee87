// Package raster reads and writes fixed-size 8-bit grayscale images in the
// two PGM serializations used by the steganography pipeline.
//
// # Formats
//
// Both forms share a three-part header: a magic line, a dimension line and a
// max-gray value that must be 255.
//   - Text form (magic "P2"): samples are whitespace-delimited decimal tokens.
//     Comment lines starting with '#' may appear between the magic line and
//     the dimension line.
//   - Binary form (magic "P5"): the max-gray token is followed by a single
//     whitespace byte and then exactly Width*Height raw bytes.
//
// # Dimensions
//
// There is no global pixel count. Every decode call takes the expected Dims
// and rejects a stream whose header disagrees; every Image carries its own
// Dims and is validated again before it is encoded.
//
// # Error Handling
//
// All failures are returned as *Error values with a Kind of KindIO, KindFormat
// or KindInvariant. The sentinel causes (ErrBadMagic, ErrDimensionMismatch,
// ErrUnsupportedDepth, ErrTruncated, ...) can be matched with errors.Is. A
// decode that fails never returns a partially populated image.
//
// # Thread Safety
//
// Cache is safe for concurrent use. Images themselves are plain buffers and
// must be synchronized by the caller if shared for writing.
package raster
