package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-solo/input"
	"github.com/hoshinonyaruko/snake-solo/loop"
	"github.com/hoshinonyaruko/snake-solo/structs"
	qrcode "github.com/skip2/go-qrcode"
)

// Session is the part of the scheduler the handlers need.
type Session interface {
	Play()
	Snapshot() (structs.GameState, structs.Phase)
	Ticks() int
}

// FrameSource serves the last rendered frame.
type FrameSource interface {
	PNG() []byte
}

// Server bundles everything the routes touch.
type Server struct {
	Session Session
	Frames  FrameSource
	Pending *input.Pending
	// Sensitivity 滑动手势最小位移（像素）
	Sensitivity float64
	SelfPath    string
}

// Register mounts all routes on router.
func (s *Server) Register(router *gin.Engine) {
	// 处理按键改变方向
	router.POST("/key", KeyHandler(s.Pending))
	// 触摸滑动，一次手势一个请求
	router.POST("/swipe", SwipeHandler(s.Sensitivity, s.Pending))
	// 点击开始 / 再来一局
	router.POST("/play", PlayHandler(s.Session))
	// 当前画面
	router.GET("/frame.png", FrameHandler(s.Frames))
	// 分数、最高分、速度
	router.GET("/status", StatusHandler(s.Session))
	// 手机扫码加入
	router.GET("/join.png", JoinHandler(s.SelfPath))
	router.Static("/static", "./static")
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/static/index.html")
	})
}

func KeyHandler(pending *input.Pending) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if key == "" {
			// 也接受直接给出方向名
			if dir, ok := structs.ParseDirection(c.Query("direction")); ok {
				pending.Set(dir)
				c.JSON(http.StatusOK, gin.H{"direction": dir.String()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: key or direction"})
			return
		}

		dir, ok := input.DirectionForKey(key)
		if !ok {
			// 未知按键直接忽略
			c.JSON(http.StatusOK, gin.H{"ignored": true})
			return
		}
		pending.Set(dir)
		c.JSON(http.StatusOK, gin.H{"direction": dir.String()})
	}
}

// SwipeHandler resolves a whole gesture in one request: the page keeps the
// touch start and last move point and posts both on touchend.
func SwipeHandler(sensitivity float64, pending *input.Pending) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := parsePoint(c, "x0", "y0")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		to, err := parsePoint(c, "x", "y")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dir, ok := input.ResolveSwipe(from, to, sensitivity)
		if !ok {
			// 位移太小，当作没有输入
			c.JSON(http.StatusOK, gin.H{"ignored": true})
			return
		}
		pending.Set(dir)
		c.JSON(http.StatusOK, gin.H{"direction": dir.String()})
	}
}

func parsePoint(c *gin.Context, xKey, yKey string) (input.Point, error) {
	x, err := strconv.ParseFloat(c.Query(xKey), 64)
	if err != nil {
		return input.Point{}, fmt.Errorf("invalid %s: %w", xKey, err)
	}
	y, err := strconv.ParseFloat(c.Query(yKey), 64)
	if err != nil {
		return input.Point{}, fmt.Errorf("invalid %s: %w", yKey, err)
	}
	return input.Point{X: x, Y: y}, nil
}

func PlayHandler(session Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Play()
		c.Status(http.StatusAccepted)
	}
}

func FrameHandler(frames FrameSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := frames.PNG()
		if data == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No frame rendered yet"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", data)
	}
}

// Status is the JSON body of GET /status.
type Status struct {
	State  string  `json:"state"`
	Score  int     `json:"score"`
	Best   int     `json:"best"`
	Speed  float64 `json:"speed"`
	Length int     `json:"length"`
	Ticks  int     `json:"ticks"` // 本局已执行的tick数
	Text   string  `json:"text"`
}

func StatusHandler(session Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, phase := session.Snapshot()
		c.JSON(http.StatusOK, Status{
			State:  phase.String(),
			Score:  state.Score,
			Best:   state.Best,
			Speed:  state.Speed,
			Length: len(state.Snake),
			Ticks:  session.Ticks(),
			Text:   loop.StatusText(state),
		})
	}
}

func JoinHandler(selfPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		png, err := qrcode.Encode(fmt.Sprintf("http://%s/static/index.html", selfPath), qrcode.Medium, 256)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to generate QR code"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
