package memimg

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadCoverMissing(t *testing.T) {
	resetCover()
	require.NoError(t, LoadCover(t.TempDir(), 100, 100))
	_, ok := GetCover()
	assert.False(t, ok)
}

func TestLoadCoverScales(t *testing.T) {
	resetCover()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "cover.png"), 300, 200, color.RGBA{R: 200, A: 255})

	require.NoError(t, LoadCover(dir, 100, 100))
	img, ok := GetCover()
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
}

func TestLoadCoverCorrupt(t *testing.T) {
	resetCover()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("not an image"), 0644))

	assert.Error(t, LoadCover(dir, 10, 10))
}

func TestIsCoverFile(t *testing.T) {
	assert.True(t, isCoverFile("/a/b/Cover.PNG"))
	assert.True(t, isCoverFile("cover.jpg"))
	assert.False(t, isCoverFile("cover.gif"))
	assert.False(t, isCoverFile("food.png"))
}

func TestWatchCoverReloads(t *testing.T) {
	resetCover()
	dir := t.TempDir()
	done := make(chan struct{})
	errs := make(chan error, 1)
	go func() { errs <- WatchCover(dir, 20, 20, done) }()

	// the watcher registers asynchronously; keep writing until it notices
	path := filepath.Join(dir, "cover.png")
	assert.Eventually(t, func() bool {
		writePNG(t, path, 40, 40, color.RGBA{G: 255, A: 255})
		_, ok := GetCover()
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	close(done)
	assert.NoError(t, <-errs)
}
