// Package icon validates product icon images.
package icon

import (
	"fmt"
	"image"
	_ "image/gif"  // Recognise GIF so it is reported as the wrong format.
	_ "image/jpeg" // Recognise JPEG so it is reported as the wrong format.
	_ "image/png"
	"io/fs"

	"github.com/alecthomas/errors"
	_ "golang.org/x/image/bmp"  // Recognise BMP so it is reported as the wrong format.
	_ "golang.org/x/image/tiff" // Recognise TIFF so it is reported as the wrong format.
	_ "golang.org/x/image/webp" // Recognise WebP so it is reported as the wrong format.
)

// MinSize is the default minimum width and height of an icon, in pixels.
const MinSize = 256

var (
	// ErrNotAnImage is returned when the file cannot be decoded as any known image format.
	ErrNotAnImage = errors.New("not a valid image")
	// ErrWrongFormat is returned when the file is an image but not a PNG.
	ErrWrongFormat = errors.New("image must be a PNG")
	// ErrNotSquare is returned when the image width and height differ.
	ErrNotSquare = errors.New("image must be square")
	// ErrTooSmall is returned when the image is smaller than the minimum size.
	ErrTooSmall = errors.New("image is too small")
)

// Error is a failed icon check on a single file.
type Error struct {
	Name   string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	msg := e.Name + ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ", " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validate checks that the file at name in fsys is usable as a product icon.
//
// Checks run in order: decodable image, PNG, square, at least minSize pixels wide.
// A non-positive minSize uses MinSize.
func Validate(fsys fs.FS, name string, minSize int) error {
	if minSize <= 0 {
		minSize = MinSize
	}
	f, err := fsys.Open(name)
	if err != nil {
		return errors.Wrap(err, "failed to open icon")
	}
	defer f.Close() //nolint:errcheck

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return &Error{Name: name, Err: ErrNotAnImage}
	}
	if format != "png" {
		return &Error{Name: name, Err: ErrWrongFormat, Detail: "got " + format}
	}
	if cfg.Width != cfg.Height {
		return &Error{Name: name, Err: ErrNotSquare, Detail: fmt.Sprintf("got %dx%d", cfg.Width, cfg.Height)}
	}
	if cfg.Width < minSize {
		return &Error{Name: name, Err: ErrTooSmall, Detail: fmt.Sprintf("must be at least %dx%d but got %dx%d", minSize, minSize, cfg.Width, cfg.Height)}
	}
	return nil
}
