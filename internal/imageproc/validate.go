package imageproc

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
)

// DefaultMaxUploadBytes is the upload size ceiling when none is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// TransportStatus is the outcome reported by the upload transport before
// the pipeline sees any bytes.
type TransportStatus int

const (
	TransportOK TransportStatus = iota
	TransportSizeExceeded
	TransportPartial
	TransportNoFile
	TransportMisconfigured
	TransportWriteFailed
	TransportExtensionBlocked
)

// Reason returns the message shown to the uploader for a failed transport.
func (s TransportStatus) Reason() string {
	switch s {
	case TransportOK:
		return ""
	case TransportSizeExceeded:
		return "the uploaded file exceeds the maximum allowed size"
	case TransportPartial:
		return "the file was only partially uploaded"
	case TransportNoFile:
		return "no file was uploaded"
	case TransportMisconfigured:
		return "the server is not configured to accept uploads"
	case TransportWriteFailed:
		return "the uploaded file could not be written"
	case TransportExtensionBlocked:
		return "the upload was blocked by a server extension"
	default:
		return "the upload failed"
	}
}

type origin int

const (
	originUnknown origin = iota
	originMultipart
	originLocal
)

// Upload is an untrusted file handed to the pipeline. Filename and MIME are
// client assertions and are never used to pick a decoder. Values must be
// built with one of the From* constructors; a zero Upload is treated as a
// spoofed argument.
type Upload struct {
	Filename string
	MIME     string
	Size     int64
	Status   TransportStatus

	open   func() (io.ReadCloser, error)
	origin origin
}

// FromFileHeader wraps a file received by net/http multipart parsing.
func FromFileHeader(fh *multipart.FileHeader) Upload {
	if fh == nil {
		return FromTransportError(TransportNoFile)
	}
	return Upload{
		Filename: fh.Filename,
		MIME:     fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
		origin: originMultipart,
	}
}

// FromTransportError records an upload the transport itself failed to deliver.
func FromTransportError(status TransportStatus) Upload {
	return Upload{Status: status, origin: originMultipart}
}

// FromLocalFile wraps a file on disk supplied by an operator (CLI, queue).
func FromLocalFile(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, err
	}
	if !info.Mode().IsRegular() {
		return Upload{}, fmt.Errorf("%s is not a regular file", path)
	}
	return Upload{
		Filename: info.Name(),
		Size:     info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
		origin: originLocal,
	}, nil
}

// FromBytes wraps an in-memory payload.
func FromBytes(filename string, data []byte) Upload {
	return Upload{
		Filename: filename,
		Size:     int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
		origin: originLocal,
	}
}

// Validate runs the transport, provenance and size checks in that order and
// returns the upload bytes only when all of them pass.
func Validate(u Upload, maxSize int64) ([]byte, error) {
	const op = "imageproc.Validate"

	if maxSize <= 0 {
		maxSize = DefaultMaxUploadBytes
	}
	if u.Status != TransportOK {
		return nil, ValidationError(op, u.Status.Reason())
	}
	if u.origin == originUnknown || u.open == nil {
		return nil, ValidationError(op, "the file did not arrive through the upload mechanism")
	}
	if u.Size <= 0 {
		return nil, ValidationError(op, "the uploaded file is empty")
	}
	if u.Size > maxSize {
		return nil, ValidationError(op, tooLarge(maxSize))
	}

	rc, err := u.open()
	if err != nil {
		return nil, IOError(op, err)
	}
	defer rc.Close()

	// The declared size comes from the transport; re-check what is read.
	data, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return nil, ValidationError(op, TransportPartial.Reason())
	}
	if len(data) == 0 {
		return nil, ValidationError(op, "the uploaded file is empty")
	}
	if int64(len(data)) > maxSize {
		return nil, ValidationError(op, tooLarge(maxSize))
	}
	return data, nil
}

func tooLarge(maxSize int64) string {
	if maxSize >= 1<<20 && maxSize%(1<<20) == 0 {
		return fmt.Sprintf("the uploaded file exceeds the maximum allowed size of %d MiB", maxSize>>20)
	}
	return fmt.Sprintf("the uploaded file exceeds the maximum allowed size of %d bytes", maxSize)
}
