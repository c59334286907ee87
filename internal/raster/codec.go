package raster

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format identifies one of the two PGM serializations by its magic tag.
type Format string

const (
	// FormatText is the plain PGM form: decimal samples separated by whitespace.
	FormatText Format = "P2"

	// FormatBinary is the raw PGM form: one byte per sample, no delimiters.
	FormatBinary Format = "P5"
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	}
	return "unknown"
}

// ParseFormat maps "text"/"P2" and "binary"/"P5" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "p2", "ascii", "plain":
		return FormatText, nil
	case "binary", "p5", "raw":
		return FormatBinary, nil
	}
	return "", fmt.Errorf("unknown raster format %q (want text or binary)", s)
}

// Header is the parsed preamble of a raster stream.
type Header struct {
	Format  Format `json:"format"`
	Dims    Dims   `json:"dims"`
	MaxGray int    `json:"max_gray"`
}

// ReadHeader parses only the header of a text or binary raster. Any positive
// dimensions are accepted; the max-gray value must still be 255.
func ReadHeader(r io.Reader) (Header, error) {
	return readHeader(bufio.NewReader(r), "read header", "", nil)
}

// DecodeText parses a text-form (P2) raster whose dimensions must equal want.
func DecodeText(r io.Reader, want Dims) (*Image, error) {
	return decode(bufio.NewReader(r), FormatText, want)
}

// DecodeBinary parses a binary-form (P5) raster whose dimensions must equal want.
func DecodeBinary(r io.Reader, want Dims) (*Image, error) {
	return decode(bufio.NewReader(r), FormatBinary, want)
}

// Decode sniffs the magic tag and parses either form.
func Decode(r io.Reader, want Dims) (*Image, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ioError("read", "", err)
	}
	switch Format(magic) {
	case FormatText, FormatBinary:
		return decode(br, Format(magic), want)
	}
	return nil, formatError("decode", ErrBadMagic, "got %q", magic)
}

func decode(br *bufio.Reader, format Format, want Dims) (*Image, error) {
	op := "decode " + format.String()
	if !want.Valid() {
		return nil, invariantError(op, ErrLengthMismatch, "invalid expected dimensions %s", want)
	}
	hdr, err := readHeader(br, op, format, &want)
	if err != nil {
		return nil, err
	}

	pix := make([]uint8, hdr.Dims.Pixels())
	if format == FormatBinary {
		err = readBinarySamples(br, pix)
	} else {
		err = readTextSamples(br, pix)
	}
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = formatError(op, err, "")
		} else {
			e.Op = op
		}
		return nil, err
	}
	return &Image{Dims: hdr.Dims, Pix: pix}, nil
}

// readHeader consumes the magic line, any comment lines, the dimension line
// and the max-gray token. When format is non-empty the magic must match it;
// when want is non-nil the dimensions must match it.
func readHeader(br *bufio.Reader, op string, format Format, want *Dims) (Header, error) {
	var hdr Header

	line, err := readLine(br)
	if err != nil {
		return hdr, ioError("read", "", err)
	}
	magic := Format(strings.TrimRight(line, " \t\r\n"))
	if magic != FormatText && magic != FormatBinary {
		return hdr, formatError(op, ErrBadMagic, "got %q", truncateForError(string(magic)))
	}
	if format != "" && magic != format {
		return hdr, formatError(op, ErrBadMagic, "got %q, want %q", string(magic), string(format))
	}
	hdr.Format = magic

	// Skip comment lines until the dimension line.
	for {
		line, err = readLine(br)
		if err != nil {
			return hdr, ioError("read", "", err)
		}
		if line == "" {
			return hdr, formatError(op, ErrMalformedHeader, "missing dimension line")
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
	}

	fields := strings.Fields(line)
	if len(fields) != 2 && len(fields) != 3 {
		return hdr, formatError(op, ErrMalformedHeader, "dimension line %q", truncateForError(line))
	}
	w, errW := strconv.Atoi(fields[0])
	h, errH := strconv.Atoi(fields[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return hdr, formatError(op, ErrMalformedHeader, "dimension line %q", truncateForError(line))
	}
	hdr.Dims = Dims{Width: w, Height: h}
	if want != nil && hdr.Dims != *want {
		return hdr, formatError(op, ErrDimensionMismatch, "got %s, want %s", hdr.Dims, *want)
	}

	var tok string
	if len(fields) == 3 {
		tok = fields[2]
	} else {
		var term byte
		if tok, term, err = readToken(br); err != nil {
			return hdr, ioError("read", "", err)
		}
		// Binary samples start right after one whitespace byte. A CRLF here
		// would turn the LF into the first sample.
		if magic == FormatBinary && term == '\r' {
			if next, _ := br.Peek(1); len(next) == 1 && next[0] == '\n' {
				return hdr, formatError(op, ErrMalformedHeader, "max-gray followed by CRLF")
			}
		}
	}
	if tok == "" {
		return hdr, formatError(op, ErrMalformedHeader, "missing max-gray value")
	}
	maxGray, err := strconv.Atoi(tok)
	if err != nil || maxGray != MaxGray {
		return hdr, formatError(op, ErrUnsupportedDepth, "max-gray %q, want %d", tok, MaxGray)
	}
	hdr.MaxGray = maxGray
	return hdr, nil
}

// readLine returns the next line including its terminator. At end of stream
// it returns whatever was read and a nil error.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

// readToken skips leading whitespace, then reads up to and including the
// single whitespace byte that terminates the token, which it also returns.
// An empty token means the stream ended first.
func readToken(br *bufio.Reader) (string, byte, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return string(tok), 0, nil
			}
			return "", 0, err
		}
		if isSpace(c) {
			if len(tok) == 0 {
				continue
			}
			return string(tok), c, nil
		}
		tok = append(tok, c)
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func readTextSamples(br *bufio.Reader, pix []uint8) error {
	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	for i := range pix {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return fmt.Errorf("%w: sample %d is longer than %d bytes", ErrMalformedPixel, i, bufio.MaxScanTokenSize)
				}
				return ioError("read", "", err)
			}
			return fmt.Errorf("%w: got %d of %d samples", ErrTruncated, i, len(pix))
		}
		v, err := strconv.ParseUint(sc.Text(), 10, 8)
		if err != nil {
			return fmt.Errorf("%w: sample %d is %q", ErrMalformedPixel, i, truncateForError(sc.Text()))
		}
		pix[i] = uint8(v)
	}
	return nil
}

func readBinarySamples(br *bufio.Reader, pix []uint8) error {
	n, err := io.ReadFull(br, pix)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, n, len(pix))
	default:
		return ioError("read", "", err)
	}
}

// EncodeText writes img in text form: the header, then one decimal sample per line.
func EncodeText(w io.Writer, img *Image) error {
	return encode(w, img, FormatText)
}

// EncodeBinary writes img in binary form: the header, then exactly
// Width*Height raw bytes.
func EncodeBinary(w io.Writer, img *Image) error {
	return encode(w, img, FormatBinary)
}

// Encode writes img in the given form.
func Encode(w io.Writer, img *Image, format Format) error {
	switch format {
	case FormatText, FormatBinary:
		return encode(w, img, format)
	}
	return invariantError("encode", ErrBadMagic, "unknown format %q", string(format))
}

func encode(w io.Writer, img *Image, format Format) error {
	if err := img.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", string(format), img.Width, img.Height, MaxGray); err != nil {
		return ioError("write", "", err)
	}

	if format == FormatBinary {
		n, err := bw.Write(img.Pix)
		if err != nil {
			return ioError("write", "", err)
		}
		if n != len(img.Pix) {
			return ioError("write", "", fmt.Errorf("%w: wrote %d of %d bytes", io.ErrShortWrite, n, len(img.Pix)))
		}
	} else {
		buf := make([]byte, 0, 4)
		for _, v := range img.Pix {
			buf = strconv.AppendUint(buf[:0], uint64(v), 10)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return ioError("write", "", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return ioError("write", "", err)
	}
	return nil
}

// EncodeBytes is a convenience wrapper around Encode that returns the
// serialized raster.
func EncodeBytes(img *Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncateForError keeps error messages short when a binary file is fed to
// the text decoder.
func truncateForError(s string) string {
	const max = 32
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
