package structs

// Cell 描述网格上的一个格子坐标。
type Cell struct {
	Col int `json:"col"` // 列
	Row int `json:"row"` // 行
}

// Direction 蛇的移动方向。
type Direction int

const (
	None Direction = iota // 没有输入
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Reverse returns the opposite direction. None has no opposite.
func (d Direction) Reverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return None
	}
}

// ParseDirection accepts the lower-case names produced by String.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return None, false
}

// Outcome 一次tick的结果。
type Outcome int

const (
	Continue Outcome = iota
	Collided
	Won
)

func (o Outcome) String() string {
	switch o {
	case Collided:
		return "collided"
	case Won:
		return "won"
	default:
		return "continue"
	}
}

// Phase 调度器所处的阶段。
type Phase int

const (
	Cover   Phase = iota // 尚未开始，显示封面
	Running              // 游戏进行中
	Prompt               // 结束，等待点击再来一局
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Prompt:
		return "prompt"
	default:
		return "cover"
	}
}

// Grid 描述地图大小（格子数）。
type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Contains reports whether c lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.Col >= 0 && c.Col < g.Cols && c.Row >= 0 && c.Row < g.Rows
}

// Cells is the total number of cells on the grid.
func (g Grid) Cells() int {
	return g.Cols * g.Rows
}

// Index maps a cell to its row-major linear index.
func (g Grid) Index(c Cell) int {
	return c.Row*g.Cols + c.Col
}

// GameState 描述一局游戏的全部状态，由调度器独占持有。
type GameState struct {
	Snake         []Cell    `json:"snake"`          // 蛇身，0 为蛇头
	Food          Cell      `json:"food"`           // 食物位置
	Direction     Direction `json:"direction"`      // 待应用的方向
	LastDirection Direction `json:"last_direction"` // 上一次实际应用的方向
	Score         int       `json:"score"`
	Speed         float64   `json:"speed"`
	Best          int       `json:"best"` // 持久化的最高分
	Grid          Grid      `json:"grid"`
}

// Head returns the first snake segment.
func (s GameState) Head() Cell {
	return s.Snake[0]
}

// Clone returns a copy that shares no memory with s.
func (s GameState) Clone() GameState {
	c := s
	c.Snake = append([]Cell(nil), s.Snake...)
	return c
}
