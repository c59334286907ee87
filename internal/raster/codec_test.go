package raster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dims2x2 = Dims{Width: 2, Height: 2}

// textRaster builds a P2 stream with the given header pieces and samples.
func textRaster(dimLine, maxGray string, samples ...int) string {
	var b strings.Builder
	b.WriteString("P2\n")
	b.WriteString(dimLine + "\n")
	b.WriteString(maxGray + "\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "%d\n", s)
	}
	return b.String()
}

func TestDecodeText(t *testing.T) {
	img, err := DecodeText(strings.NewReader(textRaster("2 2", "255", 60, 255, 0, 171)), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, dims2x2, img.Dims)
	assert.Equal(t, []uint8{60, 255, 0, 171}, img.Pix)
}

func TestDecodeText_FreeformWhitespace(t *testing.T) {
	src := "P2\r\n2 2\r\n255 1 2\t3\n\n   4"
	img, err := DecodeText(strings.NewReader(src), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4}, img.Pix)
}

func TestDecodeText_MaxGrayOnDimensionLine(t *testing.T) {
	img, err := DecodeText(strings.NewReader("P2\n2 2 255\n9 8 7 6\n"), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{9, 8, 7, 6}, img.Pix)
}

func TestDecodeText_CommentLines(t *testing.T) {
	plain := textRaster("2 2", "255", 1, 2, 3, 4)
	commented := "P2\n# created by a scanner\n#\n# second comment\n2 2\n255\n1\n2\n3\n4\n"

	want, err := DecodeText(strings.NewReader(plain), dims2x2)
	require.NoError(t, err)
	got, err := DecodeText(strings.NewReader(commented), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeText_TrailingDataIgnored(t *testing.T) {
	src := textRaster("2 2", "255", 1, 2, 3, 4) + "5 6 garbage\n\n\n"
	img, err := DecodeText(strings.NewReader(src), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4}, img.Pix)
}

func TestDecodeText_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty stream", "", ErrBadMagic},
		{"binary magic", "P5\n2 2\n255\n\x01\x02\x03\x04", ErrBadMagic},
		{"lowercase magic", "p2\n2 2\n255\n1 2 3 4", ErrBadMagic},
		{"magic with suffix", "P2x\n2 2\n255\n1 2 3 4", ErrBadMagic},
		{"wrong width", textRaster("3 2", "255", 1, 2, 3, 4, 5, 6), ErrDimensionMismatch},
		{"wrong height", textRaster("2 1", "255", 1, 2), ErrDimensionMismatch},
		{"swapped dims", "P2\n4 1\n255\n1 2 3 4", ErrDimensionMismatch},
		{"depth 15", textRaster("2 2", "15", 1, 2, 3, 4), ErrUnsupportedDepth},
		{"depth 65535", textRaster("2 2", "65535", 1, 2, 3, 4), ErrUnsupportedDepth},
		{"depth not a number", textRaster("2 2", "abc", 1, 2, 3, 4), ErrUnsupportedDepth},
		{"no samples", textRaster("2 2", "255"), ErrTruncated},
		{"three samples", textRaster("2 2", "255", 1, 2, 3), ErrTruncated},
		{"sample over 255", textRaster("2 2", "255", 1, 2, 256, 4), ErrMalformedPixel},
		{"negative sample", textRaster("2 2", "255", 1, -2, 3, 4), ErrMalformedPixel},
		{"word sample", "P2\n2 2\n255\n1 two 3 4", ErrMalformedPixel},
		{"missing dimension line", "P2\n# only a comment\n", ErrMalformedHeader},
		{"one dimension", "P2\n2\n255\n1 2 3 4", ErrMalformedHeader},
		{"zero dimension", "P2\n0 2\n255\n", ErrMalformedHeader},
		{"missing depth", "P2\n2 2\n", ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeText(strings.NewReader(tt.input), dims2x2)
			require.Error(t, err)
			assert.Nil(t, img, "no partial raster on error")
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsKind(err, KindFormat), "kind: got %q", KindOf(err))
		})
	}
}

func TestDecode_InvalidExpectedDims(t *testing.T) {
	_, err := DecodeText(strings.NewReader(textRaster("2 2", "255", 1, 2, 3, 4)), Dims{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvariant))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestDecodeText_ReadError(t *testing.T) {
	_, err := DecodeText(failingReader{}, dims2x2)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindIO))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestEncodeText(t *testing.T) {
	img := &Image{Dims: dims2x2, Pix: []uint8{0, 9, 10, 255}}
	var buf bytes.Buffer
	require.NoError(t, EncodeText(&buf, img))
	assert.Equal(t, "P2\n2 2\n255\n0\n9\n10\n255\n", buf.String())
}

func TestEncode_HeaderBytes(t *testing.T) {
	img := &Image{Dims: dims2x2, Pix: []uint8{1, 2, 3, 4}}
	tests := []struct {
		format Format
		header string
	}{
		{FormatText, "P2\n2 2\n255\n"},
		{FormatBinary, "P5\n2 2\n255\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := EncodeBytes(img, tt.format)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(data), len(tt.header))
			assert.Equal(t, tt.header, string(data[:len(tt.header)]))

			hdr, err := ReadHeader(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, Header{Format: tt.format, Dims: dims2x2, MaxGray: MaxGray}, hdr)

			back, err := Decode(bytes.NewReader(data), dims2x2)
			require.NoError(t, err)
			assert.Equal(t, img, back)
		})
	}
}

func TestTextRoundTrip_Header(t *testing.T) {
	inputs := []string{
		textRaster("2 2", "255", 1, 2, 3, 4),
		"P2\n# comment\n2 2\n255\n1 2\n3 4\n",
		"P2\n2 2 255\n255 255 0 0",
	}
	for i, in := range inputs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			img, err := DecodeText(strings.NewReader(in), dims2x2)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, EncodeText(&buf, img))

			orig, err := ReadHeader(strings.NewReader(in))
			require.NoError(t, err)
			again, err := ReadHeader(&buf)
			require.NoError(t, err)
			assert.Equal(t, orig, again)
		})
	}
}

func TestEncodeBinary_SizeExact(t *testing.T) {
	d := Dims{Width: 7, Height: 3}
	img, err := New(d)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 37)
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeBinary(&buf, img))

	header := "P5\n7 3\n255\n"
	require.True(t, strings.HasPrefix(buf.String(), header))
	assert.Equal(t, d.Pixels(), buf.Len()-len(header))

	back, err := DecodeBinary(&buf, d)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestBinaryRoundTrip_AllByteValues(t *testing.T) {
	d := Dims{Width: 16, Height: 16}
	img, err := New(d)
	require.NoError(t, err)
	for i := range img.Pix {
		// Includes '\n', '#', ' ' and other bytes the header parser treats specially.
		img.Pix[i] = uint8(255 - i)
	}

	data, err := EncodeBytes(img, FormatBinary)
	require.NoError(t, err)

	back, err := DecodeBinary(bytes.NewReader(data), d)
	require.NoError(t, err)
	assert.Equal(t, img, back)
}

func TestDecodeBinary_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"text magic", textRaster("2 2", "255", 1, 2, 3, 4), ErrBadMagic},
		{"wrong dims", "P5\n2 3\n255\n\x00\x00\x00\x00\x00\x00", ErrDimensionMismatch},
		{"wrong depth", "P5\n2 2\n127\n\x00\x00\x00\x00", ErrUnsupportedDepth},
		{"short data", "P5\n2 2\n255\n\x00\x00\x00", ErrTruncated},
		{"no data", "P5\n2 2\n255\n", ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeBinary(strings.NewReader(tt.input), dims2x2)
			require.Error(t, err)
			assert.Nil(t, img)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsKind(err, KindFormat))
		})
	}
}

func TestDecodeBinary_CRLFHeader(t *testing.T) {
	img, err := DecodeBinary(strings.NewReader("P5\r\n2 2\r\n255\r\n\x01\x02\x03\x04"), dims2x2)
	require.Error(t, err)
	assert.Nil(t, img)
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.True(t, IsKind(err, KindFormat))

	// A lone CR is still a single whitespace byte.
	img, err = DecodeBinary(strings.NewReader("P5\r\n2 2\r\n255\r\x01\x02\x03\x04"), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4}, img.Pix)

	// CRLF is harmless when max-gray shares the dimension line.
	img, err = DecodeBinary(strings.NewReader("P5\r\n2 2 255\r\n\x01\x02\x03\x04"), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4}, img.Pix)
}

func TestDecodeText_OversizedToken(t *testing.T) {
	src := "P2\n2 2\n255\n1 " + strings.Repeat("7", 70000) + " 3 4\n"
	img, err := DecodeText(strings.NewReader(src), dims2x2)
	require.Error(t, err)
	assert.Nil(t, img)
	assert.ErrorIs(t, err, ErrMalformedPixel)
	assert.True(t, IsKind(err, KindFormat), "kind: got %q", KindOf(err))
}

func TestDecodeBinary_CommentAndWhitespaceData(t *testing.T) {
	// The single whitespace after 255 ends the header; the next bytes are samples.
	img, err := DecodeBinary(strings.NewReader("P5\n# c\n2 2\n255\n\n #\t"), dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{'\n', ' ', '#', '\t'}, img.Pix)
}

func TestDecode_Sniffs(t *testing.T) {
	img := &Image{Dims: dims2x2, Pix: []uint8{1, 2, 3, 4}}
	for _, f := range []Format{FormatText, FormatBinary} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := EncodeBytes(img, f)
			require.NoError(t, err)
			back, err := Decode(bytes.NewReader(data), dims2x2)
			require.NoError(t, err)
			assert.Equal(t, img, back)
		})
	}

	_, err := Decode(strings.NewReader("GIF89a"), dims2x2)
	assert.ErrorIs(t, err, ErrBadMagic)
	_, err = Decode(strings.NewReader("P"), dims2x2)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestEncode_RejectsInvalidImage(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil", nil},
		{"short buffer", &Image{Dims: dims2x2, Pix: []uint8{1, 2, 3}}},
		{"long buffer", &Image{Dims: dims2x2, Pix: []uint8{1, 2, 3, 4, 5}}},
		{"zero dims", &Image{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range []Format{FormatText, FormatBinary} {
				var buf bytes.Buffer
				err := Encode(&buf, tt.img, f)
				require.Error(t, err)
				assert.True(t, IsKind(err, KindInvariant))
				assert.ErrorIs(t, err, ErrLengthMismatch)
				assert.Zero(t, buf.Len(), "nothing written before validation")
			}
		})
	}
}

// limitedWriter accepts n bytes and then fails.
type limitedWriter struct{ n int }

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) <= w.n {
		w.n -= len(p)
		return len(p), nil
	}
	written := w.n
	w.n = 0
	return written, io.ErrShortWrite
}

func TestEncodeBinary_ShortWrite(t *testing.T) {
	img := &Image{Dims: dims2x2, Pix: []uint8{1, 2, 3, 4}}
	err := EncodeBinary(&limitedWriter{n: 5}, img)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindIO))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"P2", FormatText},
		{"binary", FormatBinary},
		{"p5", FormatBinary},
		{" raw ", FormatBinary},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseFormat("jpeg")
	assert.Error(t, err)
}

func TestReadHeader(t *testing.T) {
	hdr, err := ReadHeader(strings.NewReader("P5\n# x\n640 480\n255\n"))
	require.NoError(t, err)
	assert.Equal(t, Header{Format: FormatBinary, Dims: Dims{Width: 640, Height: 480}, MaxGray: 255}, hdr)
}
