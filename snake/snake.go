// 关于蛇的更新
package snake

import (
	"math/rand"

	"github.com/hoshinonyaruko/snake-solo/structs"
	"github.com/kamstrup/intmap"
)

// NewGame 创建一局新游戏：蛇头在地图中央偏左上，向右移动，长度最多为3。
func NewGame(grid structs.Grid, startSpeed float64, best int, rng *rand.Rand) structs.GameState {
	col := grid.Cols/2 - 1
	row := grid.Rows/2 - 1
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}

	body := make([]structs.Cell, 0, 3)
	for i := 0; i < 3 && col-i >= 0; i++ {
		body = append(body, structs.Cell{Col: col - i, Row: row})
	}

	state := structs.GameState{
		Snake:         body,
		Direction:     structs.Right,
		LastDirection: structs.Right,
		Speed:         startSpeed,
		Best:          best,
		Grid:          grid,
	}
	if food, ok := RelocateFood(&state, rng); ok {
		state.Food = food
	}
	return state
}

// EffectiveDirection 计算本次tick实际应用的方向：与上次方向相反（或没有输入）时沿用上次方向。
func EffectiveDirection(pending, last structs.Direction) structs.Direction {
	if pending == structs.None || pending == last.Reverse() {
		return last
	}
	return pending
}

// NextHead returns the cell one step from c in direction d.
func NextHead(c structs.Cell, d structs.Direction) structs.Cell {
	switch d {
	case structs.Up:
		c.Row--
	case structs.Down:
		c.Row++
	case structs.Left:
		c.Col--
	case structs.Right:
		c.Col++
	}
	return c
}

// Update advances state by one tick.
//
// On Collided the snake, food and score are left untouched; only the
// direction fields record the direction that was attempted.
func Update(state *structs.GameState, rng *rand.Rand, speedIncrease float64) structs.Outcome {
	dir := EffectiveDirection(state.Direction, state.LastDirection)
	state.Direction = dir
	state.LastDirection = dir

	head := NextHead(state.Head(), dir)
	if !state.Grid.Contains(head) || hitsBody(state.Snake, head) {
		return structs.Collided
	}

	if head == state.Food {
		// 吃到食物：保留尾巴，蛇头前进
		state.Snake = append([]structs.Cell{head}, state.Snake...)
		state.Score++
		state.Speed += speedIncrease
		if food, ok := RelocateFood(state, rng); ok {
			state.Food = food
		}
	} else {
		MoveSnake(state, head)
	}

	if IsWin(*state) {
		return structs.Won
	}
	return structs.Continue
}

// MoveSnake 蛇头前进一格，尾巴让出，长度不变
func MoveSnake(state *structs.GameState, head structs.Cell) {
	for i := len(state.Snake) - 1; i > 0; i-- {
		state.Snake[i] = state.Snake[i-1]
	}
	state.Snake[0] = head
}

// hitsBody 检查新蛇头是否撞到身体；尾巴不算，因为它会在本tick让出
func hitsBody(body []structs.Cell, head structs.Cell) bool {
	for _, seg := range body[:len(body)-1] {
		if seg == head {
			return true
		}
	}
	return false
}

// IsWin reports whether the snake covers every cell of the grid.
func IsWin(state structs.GameState) bool {
	return len(state.Snake) == state.Grid.Cells()
}

// FreeCells 列出所有未被蛇占据的格子，按行优先顺序
func FreeCells(grid structs.Grid, body []structs.Cell) []structs.Cell {
	occupied := intmap.New[int, struct{}](len(body))
	for _, seg := range body {
		occupied.Put(grid.Index(seg), struct{}{})
	}

	free := make([]structs.Cell, 0, grid.Cells()-len(body))
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			c := structs.Cell{Col: col, Row: row}
			if _, taken := occupied.Get(grid.Index(c)); taken {
				continue
			}
			free = append(free, c)
		}
	}
	return free
}

// RelocateFood picks a uniformly random free cell. It reports false when the
// snake fills the grid.
func RelocateFood(state *structs.GameState, rng *rand.Rand) (structs.Cell, bool) {
	free := FreeCells(state.Grid, state.Snake)
	if len(free) == 0 {
		return structs.Cell{}, false
	}
	return free[rng.Intn(len(free))], true
}
