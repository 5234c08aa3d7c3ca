package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/hoshinonyaruko/snake-solo/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const block = 40

func sampleState() structs.GameState {
	return structs.GameState{
		Snake: []structs.Cell{
			{Col: 4, Row: 4}, {Col: 3, Row: 4}, {Col: 2, Row: 4},
		},
		Food:          structs.Cell{Col: 7, Row: 1},
		Direction:     structs.Right,
		LastDirection: structs.Right,
		Score:         2,
		Best:          5,
		Speed:         2.4,
		Grid:          structs.Grid{Cols: 10, Rows: 10},
	}
}

func pixel(img image.Image, c structs.Cell, dx, dy int) color.RGBA {
	r, g, b, a := img.At(c.Col*block+dx, c.Row*block+dy).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestFrameRunning(t *testing.T) {
	r := New(block, nil)
	state := sampleState()

	img := r.Frame(state, structs.Running)
	require.Equal(t, image.Rect(0, 0, 400, 400), img.Bounds())

	assert.Equal(t, color.RGBA{R: 255, A: 255}, pixel(img, state.Food, 20, 20))
	assert.Equal(t, color.RGBA{G: 128, A: 255}, pixel(img, state.Snake[1], 20, 20))
	assert.Equal(t, color.RGBA{G: 100, A: 255}, pixel(img, state.Snake[2], 20, 20))
	// back half of the head is plain dark green
	assert.Equal(t, color.RGBA{G: 100, A: 255}, pixel(img, state.Snake[0], 4, 20))
	// empty cell
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, pixel(img, structs.Cell{Col: 0, Row: 9}, 20, 20))
}

func TestFrameHeadFollowsDirection(t *testing.T) {
	r := New(block, nil)
	state := sampleState()

	// the mouth sits on the leading edge of the head
	img := r.Frame(state, structs.Running)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, pixel(img, state.Snake[0], 38, 20))

	state.LastDirection = structs.Left
	img = r.Frame(state, structs.Running)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, pixel(img, state.Snake[0], 1, 20))
}

func TestFrameWonHasNoFood(t *testing.T) {
	r := New(block, nil)
	state := structs.GameState{
		Snake:         []structs.Cell{{Col: 1, Row: 0}, {Col: 0, Row: 0}},
		Food:          structs.Cell{Col: 1, Row: 0},
		LastDirection: structs.Right,
		Grid:          structs.Grid{Cols: 2, Rows: 1},
	}
	img := r.Frame(state, structs.Running)
	assert.Equal(t, color.RGBA{G: 100, A: 255}, pixel(img, state.Snake[0], 4, 20))
}

func TestFramePromptDiffers(t *testing.T) {
	r := New(block, nil)
	state := sampleState()

	running := r.Frame(state, structs.Running)
	prompt := r.Frame(state, structs.Prompt)
	assert.Equal(t, running.Bounds(), prompt.Bounds())
	assert.NotEqual(t, pixel(running, structs.Cell{Col: 5, Row: 5}, 0, 0), pixel(prompt, structs.Cell{Col: 5, Row: 5}, 0, 0))
}

func TestCoverFrame(t *testing.T) {
	cover := image.NewRGBA(image.Rect(0, 0, 50, 30))
	for i := range cover.Pix {
		cover.Pix[i] = 0x80
	}
	r := New(block, func() (image.Image, bool) { return cover, true })

	img := r.Frame(structs.GameState{Grid: structs.Grid{Cols: 10, Rows: 10}}, structs.Cover)
	assert.Equal(t, image.Rect(0, 0, 400, 400), img.Bounds())

	missing := New(block, func() (image.Image, bool) { return nil, false })
	img = missing.Frame(structs.GameState{Grid: structs.Grid{Cols: 10, Rows: 10}}, structs.Cover)
	assert.Equal(t, image.Rect(0, 0, 400, 400), img.Bounds())
}

func TestRenderStoresPNG(t *testing.T) {
	r := New(block, nil)
	assert.Nil(t, r.PNG())

	r.Render(sampleState(), structs.Running)

	img, err := png.Decode(bytes.NewReader(r.PNG()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 400), img.Bounds())
	assert.Equal(t, "score: 2 | best: 5 | speed: 2.4 km/h", r.Status())
}
