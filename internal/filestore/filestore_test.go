package filestore

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)

	return form.File["file"][0]
}

func TestStore_Save(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)

	content := []byte("picture bytes")

	name, err := s.Save(fileHeader(t, "avatar.PNG", content), Image)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "avatar")

	saved, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestStore_Save_uniqueNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := s.Save(fileHeader(t, "a.jpg", []byte("a")), Image)
	require.NoError(t, err)

	second, err := s.Save(fileHeader(t, "a.jpg", []byte("a")), Image)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStore_Save_unsupportedType(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)

	tt := []struct {
		name     string
		filename string
		kind     Kind
	}{
		{"image as video", "a.png", Video},
		{"video as image", "a.mp4", Image},
		{"document", "a.pdf", Image},
		{"no extension", "binary", Video},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Save(fileHeader(t, tc.filename, []byte("data")), tc.kind)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}

	// rejected uploads must not leave files behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Remove(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)

	name, err := s.Save(fileHeader(t, "avatar.png", []byte("picture")), Image)
	require.NoError(t, err)

	require.NoError(t, s.Remove(name))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, s.Remove(name))
}

func TestStore_Save_videoKinds(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, filename := range []string{"clip.mp4", "clip.webp"} {
		name, err := s.Save(fileHeader(t, filename, []byte("video")), Video)
		require.NoError(t, err)
		assert.Equal(t, filepath.Ext(filename), filepath.Ext(name))
	}
}
