// Package media stores uploaded images under the media root. Files are named
// by the xxhash of their content, so re-uploading the same picture reuses the
// stored file.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	_ "golang.org/x/image/webp"
)

// Upload locations, relative to the media root.
const (
	AvatarsDir    = "avatars"
	PostImagesDir = "posts_images"
)

var (
	ErrNotImage = errors.New("file is not a supported image")
	ErrTooLarge = errors.New("file is too large")
)

type Storage struct {
	root     string
	maxBytes int64
}

func NewStorage(root string, maxBytes int64) *Storage {
	return &Storage{root: root, maxBytes: maxBytes}
}

func (s *Storage) Root() string { return s.root }

// FromRequest stores the image posted in field, if any. It returns an empty
// path when the field was left blank.
func (s *Storage) FromRequest(c *gin.Context, field, dir string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return "", ErrTooLarge
	}
	if err != nil {
		return "", err
	}
	if fh.Size == 0 && fh.Filename == "" {
		return "", nil
	}
	return s.Save(fh, dir)
}

func (s *Storage) Save(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", err
	}
	return s.Write(content, dir)
}

// Write validates content as an image and stores it in dir. The returned
// path is relative to the media root and uses forward slashes.
func (s *Storage) Write(content []byte, dir string) (string, error) {
	if int64(len(content)) > s.maxBytes {
		return "", ErrTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", ErrNotImage
	}

	name := fmt.Sprintf("%016x.%s", xxhash.Sum64(content), extension(format))
	rel := path.Join(dir, name)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	if _, err := os.Stat(full); err == nil {
		return rel, nil
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", err
	}
	return rel, nil
}

// UserMessage translates an upload failure into form feedback. ok is false
// for failures the user cannot fix.
func UserMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, ErrNotImage):
		return "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением.", true
	case errors.Is(err, ErrTooLarge):
		return "Файл слишком большой.", true
	default:
		return "", false
	}
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
