package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, c)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWrite_StoresUnderDir(t *testing.T) {
	s := NewStorage(t.TempDir(), 1<<20)

	rel, err := s.Write(pngBytes(t, color.White), AvatarsDir)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "avatars/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))
	assert.FileExists(t, filepath.Join(s.Root(), filepath.FromSlash(rel)))
}

func TestWrite_SameContentSameName(t *testing.T) {
	s := NewStorage(t.TempDir(), 1<<20)
	content := pngBytes(t, color.Black)

	first, err := s.Write(content, PostImagesDir)
	require.NoError(t, err)
	second, err := s.Write(content, PostImagesDir)
	require.NoError(t, err)
	other, err := s.Write(pngBytes(t, color.White), PostImagesDir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestWrite_RejectsNonImage(t *testing.T) {
	s := NewStorage(t.TempDir(), 1<<20)

	_, err := s.Write([]byte("definitely not a picture"), AvatarsDir)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestWrite_RejectsTooLarge(t *testing.T) {
	s := NewStorage(t.TempDir(), 10)

	_, err := s.Write(pngBytes(t, color.White), AvatarsDir)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUserMessage(t *testing.T) {
	msg, ok := UserMessage(ErrNotImage)
	assert.True(t, ok)
	assert.Contains(t, msg, "изображение")

	_, ok = UserMessage(ErrTooLarge)
	assert.True(t, ok)

	_, ok = UserMessage(os.ErrPermission)
	assert.False(t, ok)
}
