package validation

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
)

var ErrInvalidMimeType = errors.New("invalid mime type")

// UploadedImage carries what the upload handler learned about a blob
// before it is stored.
type UploadedImage struct {
	MimeType    string
	SizeBytes   int64
	ImageWidth  *int
	ImageHeight *int
}

// ValidateImage checks the declared content type against the allow list,
// sniffs the actual bytes and probes image dimensions. The reader must be
// rewindable; it is left at the start for the subsequent store pass.
func ValidateImage(contentType string, size int64, data io.ReadSeeker, allowedMimes []string) (*UploadedImage, error) {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mimeType == "" {
		return nil, fmt.Errorf("could not parse content type %q", contentType)
	}
	if !contains(allowedMimes, mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMimeType, mimeType)
	}

	// A lying Content-Type header is rejected based on the actual bytes
	head := make([]byte, 512)
	n, _ := io.ReadFull(data, head)
	if _, err := data.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	sniffed := http.DetectContentType(head[:n])
	if strings.HasPrefix(sniffed, "image/") && sniffed != mimeType {
		if !contains(allowedMimes, sniffed) {
			return nil, fmt.Errorf("%w: content is %s", ErrInvalidMimeType, sniffed)
		}
		mimeType = sniffed
	}

	width, height := extractImageDimensions(data)
	return &UploadedImage{
		MimeType:    mimeType,
		SizeBytes:   size,
		ImageWidth:  width,
		ImageHeight: height,
	}, nil
}

func contains(allowed []string, mimeType string) bool {
	for _, m := range allowed {
		if m == mimeType {
			return true
		}
	}
	return false
}

func extractImageDimensions(data io.ReadSeeker) (*int, *int) {
	img, _, err := image.DecodeConfig(data)
	data.Seek(0, io.SeekStart) // Reset for the subsequent store pass
	if err != nil {
		// Not decodable is not fatal, dimensions just stay unknown
		return nil, nil
	}

	width, height := img.Width, img.Height
	return &width, &height
}
