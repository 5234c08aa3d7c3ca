package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-solo/input"
	"github.com/hoshinonyaruko/snake-solo/loop"
	"github.com/hoshinonyaruko/snake-solo/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Session = (*loop.Scheduler)(nil)

type fakeSession struct {
	plays int
	state structs.GameState
	phase structs.Phase
}

func (f *fakeSession) Play() { f.plays++ }

func (f *fakeSession) Ticks() int { return 17 }

func (f *fakeSession) Snapshot() (structs.GameState, structs.Phase) {
	return f.state, f.phase
}

type fakeFrames struct{ data []byte }

func (f fakeFrames) PNG() []byte { return f.data }

func setup(frames []byte) (*gin.Engine, *Server, *fakeSession) {
	gin.SetMode(gin.TestMode)
	session := &fakeSession{
		state: structs.GameState{
			Snake: []structs.Cell{{Col: 4, Row: 4}, {Col: 3, Row: 4}},
			Score: 3, Best: 8, Speed: 2.6,
		},
		phase: structs.Running,
	}
	srv := &Server{
		Session:     session,
		Frames:      fakeFrames{data: frames},
		Pending:     &input.Pending{},
		Sensitivity: 20,
		SelfPath:    "example.com:38870",
	}
	router := gin.New()
	srv.Register(router)
	return router, srv, session
}

func do(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestKeyHandler(t *testing.T) {
	router, srv, _ := setup(nil)

	w := do(router, http.MethodPost, "/key?key=ArrowUp")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.Up, srv.Pending.Take())

	w = do(router, http.MethodPost, "/key?key=%D1%84") // ф
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.Left, srv.Pending.Take())

	w = do(router, http.MethodPost, "/key?key=q")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.None, srv.Pending.Take())

	w = do(router, http.MethodPost, "/key?direction=right")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.Right, srv.Pending.Take())

	w = do(router, http.MethodPost, "/key")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, http.MethodPost, "/key?direction=sideways")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSwipeHandler(t *testing.T) {
	router, srv, _ := setup(nil)

	w := do(router, http.MethodPost, "/swipe?x0=100&y0=100&x=110&y=160")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.Down, srv.Pending.Take())

	w = do(router, http.MethodPost, "/swipe?x0=100&y0=100&x=30&y=90")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.Left, srv.Pending.Take())

	// short gesture is ignored
	w = do(router, http.MethodPost, "/swipe?x0=100&y0=100&x=105&y=100")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, structs.None, srv.Pending.Take())
}

// Concurrent gestures each resolve from their own two points, whatever order
// the requests are served in.
func TestSwipeHandlerConcurrent(t *testing.T) {
	router, srv, _ := setup(nil)

	var wg sync.WaitGroup
	codes := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- do(router, http.MethodPost, "/swipe?x0=0&y0=0&x=80&y=10").Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, structs.Right, srv.Pending.Take())
}

func TestSwipeBadRequest(t *testing.T) {
	router, _, _ := setup(nil)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/swipe?x0=abc&y0=1&x=1&y=1").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/swipe?x0=1&y0=1").Code)
}

func TestPlayHandler(t *testing.T) {
	router, _, session := setup(nil)

	assert.Equal(t, http.StatusAccepted, do(router, http.MethodPost, "/play").Code)
	assert.Equal(t, 1, session.plays)
}

func TestStatusHandler(t *testing.T) {
	router, _, _ := setup(nil)

	w := do(router, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, Status{
		State:  "running",
		Score:  3,
		Best:   8,
		Speed:  2.6,
		Length: 2,
		Ticks:  17,
		Text:   "score: 3 | best: 8 | speed: 2.6 km/h",
	}, status)
}

func TestFrameHandler(t *testing.T) {
	router, _, _ := setup(nil)
	assert.Equal(t, http.StatusServiceUnavailable, do(router, http.MethodGet, "/frame.png").Code)

	router, _, _ = setup([]byte("png-bytes"))
	w := do(router, http.MethodGet, "/frame.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestJoinHandler(t *testing.T) {
	router, _, _ := setup(nil)

	w := do(router, http.MethodGet, "/join.png")
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
