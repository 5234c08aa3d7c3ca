// Package term is the terminal front end: it draws the board with tcell and
// feeds key presses into the pending-direction slot.
package term

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-solo/input"
	"github.com/hoshinonyaruko/snake-solo/loop"
	"github.com/hoshinonyaruko/snake-solo/structs"
)

// 每个格子占两列，终端字符大约是高宽比 2:1
const cellWidth = 2

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFood   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleEyes   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorDarkGreen)
)

// Session is the part of the scheduler the terminal needs.
type Session interface {
	Play()
}

// View draws frames onto a tcell screen.
type View struct {
	mu     sync.Mutex
	screen tcell.Screen
}

func NewView(screen tcell.Screen) *View {
	return &View{screen: screen}
}

// Render implements loop.Sink.
func (v *View) Render(state structs.GameState, phase structs.Phase) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.screen
	s.Clear()
	cols, rows := state.Grid.Cols, state.Grid.Rows
	drawBorder(s, cols*cellWidth+2, rows+2)

	switch phase {
	case structs.Cover:
		drawText(s, 1, rows/2+1, "press enter to play", styleText)
	default:
		if len(state.Snake) < state.Grid.Cells() {
			setCell(s, state.Food, "()", styleFood)
		}
		for i := len(state.Snake) - 1; i > 0; i-- {
			style := styleBody
			if i%2 == 0 {
				style = styleHead
			}
			setCell(s, state.Snake[i], "██", style)
		}
		if len(state.Snake) > 0 {
			setCell(s, state.Snake[0], headGlyph(state.LastDirection), styleEyes)
		}
		if phase == structs.Prompt {
			drawText(s, 1, rows/2+1, "press enter to play again", styleText)
		}
	}
	drawText(s, 0, rows+2, loop.StatusText(state), styleText)
	s.Show()
}

func headGlyph(dir structs.Direction) string {
	switch dir {
	case structs.Up:
		return "^^"
	case structs.Down:
		return "vv"
	case structs.Left:
		return "<:"
	default:
		return ":>"
	}
}

func setCell(s tcell.Screen, c structs.Cell, glyph string, style tcell.Style) {
	x := 1 + c.Col*cellWidth
	y := 1 + c.Row
	drawText(s, x, y, glyph, style)
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawBorder(s tcell.Screen, w, h int) {
	for x := 0; x < w; x++ {
		s.SetContent(x, 0, '─', nil, styleBorder)
		s.SetContent(x, h-1, '─', nil, styleBorder)
	}
	for y := 0; y < h; y++ {
		s.SetContent(0, y, '│', nil, styleBorder)
		s.SetContent(w-1, y, '│', nil, styleBorder)
	}
	s.SetContent(0, 0, '┌', nil, styleBorder)
	s.SetContent(w-1, 0, '┐', nil, styleBorder)
	s.SetContent(0, h-1, '└', nil, styleBorder)
	s.SetContent(w-1, h-1, '┘', nil, styleBorder)
}

// KeyName converts a tcell key event to the key names understood by
// input.DirectionForKey.
func KeyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "arrowup"
	case tcell.KeyDown:
		return "arrowdown"
	case tcell.KeyLeft:
		return "arrowleft"
	case tcell.KeyRight:
		return "arrowright"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	return ""
}

// Run reads terminal events until ctx is done or the player quits.
func Run(ctx context.Context, screen tcell.Screen, session Session, pending *input.Pending) {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !handleEvent(ev, session, pending, screen) {
				return
			}
		}
	}
}

// handleEvent 返回 false 表示退出
func handleEvent(ev tcell.Event, session Session, pending *input.Pending, screen tcell.Screen) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			session.Play()
			return true
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
			session.Play()
			return true
		}
		if dir, ok := input.DirectionForKey(KeyName(ev)); ok {
			pending.Set(dir)
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			session.Play()
		}
	case *tcell.EventResize:
		screen.Sync()
	}
	return true
}
