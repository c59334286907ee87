package raster

import (
	"errors"
	"os"
	"path/filepath"
)

// LoadFile reads a raster of either form from path.
//
// The file is closed before LoadFile returns on every path. Errors carry the
// path: open and read failures are KindIO, header and sample problems are
// KindFormat.
func LoadFile(path string, want Dims) (*Image, error) {
	return loadFile(path, func(f *os.File) (*Image, error) { return Decode(f, want) })
}

// LoadTextFile reads a text-form raster from path.
func LoadTextFile(path string, want Dims) (*Image, error) {
	return loadFile(path, func(f *os.File) (*Image, error) { return DecodeText(f, want) })
}

// LoadBinaryFile reads a binary-form raster from path.
func LoadBinaryFile(path string, want Dims) (*Image, error) {
	return loadFile(path, func(f *os.File) (*Image, error) { return DecodeBinary(f, want) })
}

func loadFile(path string, decode func(*os.File) (*Image, error)) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return img, nil
}

// ReadHeaderFile parses only the header of the raster stored at path.
func ReadHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, ioError("open", path, err)
	}
	defer f.Close()

	hdr, err := ReadHeader(f)
	if err != nil {
		return Header{}, withPath(err, path)
	}
	return hdr, nil
}

// SaveFile writes img to path in the given form, creating or truncating the file.
//
// A failure after the file was created leaves it on disk; callers that need
// all-or-nothing output must remove it themselves.
func SaveFile(path string, img *Image, format Format) (err error) {
	if err := img.Validate(); err != nil {
		return withPath(err, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return ioError("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioError("close", path, cerr)
		}
	}()

	if err := Encode(f, img, format); err != nil {
		return withPath(err, path)
	}
	return nil
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// SamePath reports whether a and b name the same location once cleaned and
// made absolute against the working directory. Symlinks are not resolved.
func SamePath(a, b string) bool {
	return canonicalPath(a) == canonicalPath(b)
}

func canonicalPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
