// Package input maps key names and touch gestures to directions and holds the
// single pending-direction slot read by the scheduler. Touch start/move
// tracking happens on the client; a finished gesture arrives as two points.
package input

import (
	"math"
	"strings"
	"sync/atomic"

	"github.com/hoshinonyaruko/snake-solo/structs"
)

// 键位表：方向键、WASD，以及俄文键盘布局下 WASD 所在位置的字母
var keyDirections = map[string]structs.Direction{
	"arrowup":    structs.Up,
	"arrowdown":  structs.Down,
	"arrowleft":  structs.Left,
	"arrowright": structs.Right,
	"up":         structs.Up,
	"down":       structs.Down,
	"left":       structs.Left,
	"right":      structs.Right,
	"w":          structs.Up,
	"s":          structs.Down,
	"a":          structs.Left,
	"d":          structs.Right,
	"ц":          structs.Up,
	"ы":          structs.Down,
	"ф":          structs.Left,
	"в":          structs.Right,
}

// DirectionForKey resolves a key name case-insensitively. Unknown keys
// return false.
func DirectionForKey(key string) (structs.Direction, bool) {
	d, ok := keyDirections[strings.ToLower(key)]
	return d, ok
}

// Pending is the single pending-direction slot. Any number of writers may
// call Set; the scheduler goroutine calls Take once per tick.
type Pending struct {
	dir atomic.Int32
}

// Set overwrites the slot; only the latest input before a tick matters.
func (p *Pending) Set(d structs.Direction) {
	p.dir.Store(int32(d))
}

// Take returns the slot content and clears it to None.
func (p *Pending) Take() structs.Direction {
	return structs.Direction(p.dir.Swap(int32(structs.None)))
}

// Point is a touch coordinate in screen pixels.
type Point struct {
	X, Y float64
}

// ResolveSwipe picks the axis with the larger displacement. Equal
// displacement resolves to the vertical axis.
func ResolveSwipe(from, to Point, sensitivity float64) (structs.Direction, bool) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if math.Hypot(dx, dy) < sensitivity {
		return structs.None, false
	}
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return structs.Right, true
		}
		return structs.Left, true
	}
	if dy > 0 {
		return structs.Down, true
	}
	return structs.Up, true
}
