// Package render paints game state onto a raster frame with gg.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/hoshinonyaruko/snake-solo/loop"
	"github.com/hoshinonyaruko/snake-solo/structs"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	colorBackground = "#FFFFFF"
	colorGrid       = "#E6E6E6"
	colorHead       = "#006400" // darkgreen
	colorBody       = "#008000" // green
	colorFood       = "#FF0000"
	colorTooth      = "#FFFFFF"
	colorMouth      = "#FF0000"
	colorEye        = "#FFFF00"
	colorText       = "#000000"

	PromptText = "click to play again"
)

// 全局缓存：背景+网格，按尺寸缓存
var backgroundCache sync.Map

var regularFont *truetype.Font

func init() {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse embedded font: %v", err)
	}
	regularFont = f
}

// CoverFunc returns the cover image shown before the first game.
type CoverFunc func() (image.Image, bool)

// Renderer draws frames and keeps the latest one encoded as PNG.
type Renderer struct {
	blockSize int
	cover     CoverFunc

	mu     sync.RWMutex
	png    []byte
	status string
	phase  structs.Phase
}

// New creates a Renderer. cover may be nil.
func New(blockSize int, cover CoverFunc) *Renderer {
	return &Renderer{blockSize: blockSize, cover: cover}
}

// Render implements loop.Sink: it draws the frame and stores the encoded PNG.
func (r *Renderer) Render(state structs.GameState, phase structs.Phase) {
	img := r.Frame(state, phase)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("encode frame: %v", err)
		return
	}

	r.mu.Lock()
	r.png = buf.Bytes()
	r.status = loop.StatusText(state)
	r.phase = phase
	r.mu.Unlock()
}

// PNG returns the last encoded frame, or nil before the first Render.
func (r *Renderer) PNG() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.png
}

// Status returns the status line for the last frame.
func (r *Renderer) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Frame draws state for the given phase.
func (r *Renderer) Frame(state structs.GameState, phase structs.Phase) image.Image {
	width := state.Grid.Cols * r.blockSize
	height := state.Grid.Rows * r.blockSize

	if phase == structs.Cover {
		return r.coverFrame(width, height)
	}

	dc := gg.NewContext(width, height)
	dc.DrawImage(background(width, height, r.blockSize), 0, 0)
	r.drawSnake(dc, state)
	// 通关时没有新的食物
	if len(state.Snake) < state.Grid.Cells() {
		r.fillCell(dc, state.Food, colorFood)
	}

	if phase == structs.Prompt {
		return promptOverlay(dc.Image(), width, height)
	}
	return dc.Image()
}

func (r *Renderer) coverFrame(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	if r.cover != nil {
		if img, ok := r.cover(); ok {
			dc.DrawImage(imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), 0, 0)
			return dc.Image()
		}
	}
	dc.DrawImage(background(width, height, r.blockSize), 0, 0)
	drawCenteredText(dc, "click to play", width, height)
	return dc.Image()
}

// background 从缓存中获取背景，没有则绘制
func background(width, height, blockSize int) image.Image {
	key := fmt.Sprintf("%d_%d_%d", width, height, blockSize)
	if cached, ok := backgroundCache.Load(key); ok {
		return cached.(image.Image)
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(colorBackground)
	dc.Clear()
	renderGrid(dc, width, height, blockSize)
	img := dc.Image()
	backgroundCache.Store(key, img)
	return img
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetHexColor(colorGrid)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

func (r *Renderer) fillCell(dc *gg.Context, c structs.Cell, hex string) {
	dc.SetHexColor(hex)
	dc.DrawRectangle(float64(c.Col*r.blockSize), float64(c.Row*r.blockSize), float64(r.blockSize), float64(r.blockSize))
	dc.Fill()
}

func (r *Renderer) drawSnake(dc *gg.Context, state structs.GameState) {
	for i := len(state.Snake) - 1; i > 0; i-- {
		hex := colorBody
		if i%2 == 0 {
			hex = colorHead
		}
		r.fillCell(dc, state.Snake[i], hex)
	}
	if len(state.Snake) > 0 {
		r.drawHead(dc, state.Snake[0], state.LastDirection)
	}
}

// drawHead 画朝右的蛇头，再按方向绕格子中心旋转
func (r *Renderer) drawHead(dc *gg.Context, c structs.Cell, dir structs.Direction) {
	b := float64(r.blockSize)
	x := float64(c.Col) * b
	y := float64(c.Row) * b

	r.fillCell(dc, c, colorHead)

	dc.Push()
	dc.RotateAbout(gg.Radians(headAngle(dir)), x+b/2, y+b/2)

	toothX := float64(r.blockSize / 5)
	toothW := float64(r.blockSize / 6)
	toothH := float64(r.blockSize / 3)
	mouthH := float64(r.blockSize / 8)
	eyeX := float64(r.blockSize / 8)
	eyeY := float64(r.blockSize / 2)
	eyeW := float64(r.blockSize / 3)
	eyeH := float64(r.blockSize / 5)

	dc.SetHexColor(colorTooth)
	dc.DrawRectangle(x+b-toothH, y+toothX, toothH, toothW)
	dc.DrawRectangle(x+b-toothH, y+b-toothX-toothW, toothH, toothW)
	dc.Fill()

	dc.SetHexColor(colorMouth)
	dc.DrawRectangle(x+b-mouthH, y+toothX+toothW, mouthH, b-2*(toothX+toothW))
	dc.Fill()

	dc.SetHexColor(colorEye)
	dc.DrawRectangle(x+b-eyeY-eyeH, y+eyeX, eyeH, eyeW)
	dc.DrawRectangle(x+b-eyeY-eyeH, y+b-eyeX-eyeW, eyeH, eyeW)
	dc.Fill()

	dc.Pop()
}

func headAngle(dir structs.Direction) float64 {
	switch dir {
	case structs.Down:
		return 90
	case structs.Left:
		return 180
	case structs.Up:
		return 270
	default:
		return 0
	}
}

// promptOverlay 模糊当前画面并在中央写上再来一局的提示
func promptOverlay(frame image.Image, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.DrawImage(imaging.Blur(frame, 1.5), 0, 0)
	drawCenteredText(dc, PromptText, width, height)
	return dc.Image()
}

// drawCenteredText 字号从 8 开始每次加 4，直到文字宽度达到画布的 80%
func drawCenteredText(dc *gg.Context, text string, width, height int) {
	size := 8.0
	face := newFace(size)
	dc.SetFontFace(face)
	for {
		w, _ := dc.MeasureString(text)
		if w >= float64(width)*0.8 || size > float64(height) {
			break
		}
		size += 4
		dc.SetFontFace(newFace(size))
	}
	dc.SetHexColor(colorText)
	dc.DrawStringAnchored(text, float64(width)/2, float64(height)/2, 0.5, 0.5)
}

func newFace(points float64) font.Face {
	return truetype.NewFace(regularFont, &truetype.Options{Size: points})
}
