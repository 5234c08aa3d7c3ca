// Package loop runs the fixed-delay game loop. A single goroutine owns the
// game state; input and restart requests reach it through the pending slot
// and a channel.
package loop

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/hoshinonyaruko/snake-solo/input"
	"github.com/hoshinonyaruko/snake-solo/snake"
	"github.com/hoshinonyaruko/snake-solo/structs"
)

// Clock arms one-shot timers. Tests replace it with a manual clock.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

// ScoreStore persists the best score.
type ScoreStore interface {
	BestScore() (int, error)
	SaveBestScore(score int) error
}

// Sounds plays game feedback.
type Sounds interface {
	Background()
	Eat()
	Death()
}

// Sink receives a copy of the state after every change.
type Sink interface {
	Render(state structs.GameState, phase structs.Phase)
}

// Options 游戏参数
type Options struct {
	Grid          structs.Grid
	StartSpeed    float64
	SpeedIncrease float64
	// WinByLength 通关时记录蛇的长度而不是分数
	WinByLength bool
}

// Scheduler owns the GameState and drives ticks.
type Scheduler struct {
	opts    Options
	clock   Clock
	rng     *rand.Rand
	pending *input.Pending
	store   ScoreStore
	sounds  Sounds
	sinks   []Sink

	play chan struct{}

	mu    sync.RWMutex
	state structs.GameState
	phase structs.Phase
	ticks int
}

// New creates a scheduler in the Cover phase. Call Run to start processing.
func New(opts Options, pending *input.Pending, store ScoreStore, sounds Sounds, rng *rand.Rand, clock Clock) *Scheduler {
	s := &Scheduler{
		opts:    opts,
		clock:   clock,
		rng:     rng,
		pending: pending,
		store:   store,
		sounds:  sounds,
		play:    make(chan struct{}, 1),
		phase:   structs.Cover,
	}
	s.state = structs.GameState{Grid: opts.Grid, Speed: opts.StartSpeed, Best: s.readBest()}
	return s
}

// AddSink registers a renderer. Must be called before Run.
func (s *Scheduler) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// Play requests a new game. It is ignored while a game is running.
func (s *Scheduler) Play() {
	select {
	case s.play <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state and phase.
func (s *Scheduler) Snapshot() (structs.GameState, structs.Phase) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), s.phase
}

// Ticks returns the number of ticks executed in the current game.
func (s *Scheduler) Ticks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

// Interval is the delay before the next tick at the given speed.
func Interval(speed float64) time.Duration {
	return time.Duration(float64(time.Second) / speed)
}

// Run processes play requests and ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.publish()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.play:
			if !s.newGame() {
				continue
			}
			timer = s.clock.After(s.interval())
		case <-timer:
			if s.tick() == structs.Continue {
				timer = s.clock.After(s.interval())
			} else {
				timer = nil
			}
		}
	}
}

// newGame 从封面或结束提示进入新的一局，游戏进行中返回 false
func (s *Scheduler) newGame() bool {
	s.mu.Lock()
	if s.phase == structs.Running {
		s.mu.Unlock()
		return false
	}
	s.pending.Take()
	s.state = snake.NewGame(s.opts.Grid, s.opts.StartSpeed, s.readBest(), s.rng)
	s.phase = structs.Running
	s.ticks = 0
	s.mu.Unlock()

	s.sounds.Background()
	s.publish()
	return true
}

func (s *Scheduler) tick() structs.Outcome {
	s.mu.Lock()
	if d := s.pending.Take(); d != structs.None {
		s.state.Direction = d
	}
	score := s.state.Score
	outcome := snake.Update(&s.state, s.rng, s.opts.SpeedIncrease)
	s.ticks++
	ate := s.state.Score > score

	switch outcome {
	case structs.Collided:
		s.phase = structs.Prompt
		s.record(s.state.Score)
	case structs.Won:
		s.phase = structs.Prompt
		if s.opts.WinByLength {
			s.record(len(s.state.Snake))
		} else {
			s.record(s.state.Score)
		}
	}
	s.mu.Unlock()

	switch {
	case outcome == structs.Collided:
		s.sounds.Death()
	case ate:
		s.sounds.Eat()
	}
	s.publish()
	return outcome
}

// record 超过最高分时持久化，调用方持有写锁
func (s *Scheduler) record(value int) {
	if value <= s.state.Best {
		return
	}
	if err := s.store.SaveBestScore(value); err != nil {
		log.Printf("Failed to save best score: %v", err)
		return
	}
	s.state.Best = value
}

func (s *Scheduler) readBest() int {
	best, err := s.store.BestScore()
	if err != nil {
		log.Printf("Failed to read best score: %v", err)
		return 0
	}
	return best
}

func (s *Scheduler) interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Interval(s.state.Speed)
}

func (s *Scheduler) publish() {
	state, phase := s.Snapshot()
	for _, sink := range s.sinks {
		sink.Render(state, phase)
	}
}

// StatusText is the status line shown under the board.
func StatusText(state structs.GameState) string {
	return fmt.Sprintf("score: %d | best: %d | speed: %.1f km/h", state.Score, state.Best, state.Speed)
}
