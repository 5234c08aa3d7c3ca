package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	// 吃东西的音量是其他声音的 0.4 倍
	eatVolume = 0.4
)

// SoundManager plays the background loop and the eat/death effects.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	background  *beep.Ctrl
	death       *beep.Ctrl
	initialized bool
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker. Until it succeeds every Play call is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.background = nil
	sm.death = nil
	sm.initialized = false
}

// Background 停止死亡音效，开始循环播放背景音乐
func (sm *SoundManager) Background() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()

	stop(sm.death)
	sm.death = nil
	stop(sm.background)
	sm.background = &beep.Ctrl{Streamer: NewMelody(sampleRate, backgroundNotes, 180*time.Millisecond)}
	sm.mixer.Add(sm.background)
}

// Death 停止背景音乐，播放死亡音效
func (sm *SoundManager) Death() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()

	stop(sm.background)
	sm.background = nil
	sm.death = &beep.Ctrl{Streamer: NewSweep(sampleRate, 440, 80, 700*time.Millisecond)}
	sm.mixer.Add(sm.death)
}

// stop 清空 Streamer，混音器会在下一次 Stream 时移除它。调用方持有 speaker.Lock
func stop(ctrl *beep.Ctrl) {
	if ctrl == nil {
		return
	}
	ctrl.Paused = true
	ctrl.Streamer = nil
}

// Eat plays a short chirp over whatever is playing.
func (sm *SoundManager) Eat() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()

	sm.mixer.Add(&effects.Volume{
		Streamer: NewSweep(sampleRate, 660, 1320, 90*time.Millisecond),
		Base:     2,
		Volume:   math.Log2(eatVolume),
	})
}

// Silent satisfies the same calls as SoundManager without an audio device.
type Silent struct{}

func (Silent) Background() {}
func (Silent) Eat()        {}
func (Silent) Death()      {}

// 背景旋律的音高（Hz），循环播放
var backgroundNotes = []float64{262, 330, 392, 330, 294, 349, 440, 349}

// Sweep is a sine tone whose frequency glides linearly from one pitch to
// another over a fixed duration.
type Sweep struct {
	rate     beep.SampleRate
	from, to float64
	total    int
	pos      int
	phase    float64
}

// NewSweep creates a finite gliding tone.
func NewSweep(rate beep.SampleRate, from, to float64, d time.Duration) *Sweep {
	return &Sweep{rate: rate, from: from, to: to, total: rate.N(d)}
}

func (s *Sweep) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.total {
		return 0, false
	}
	for i := range samples {
		if s.pos >= s.total {
			return i, true
		}
		progress := float64(s.pos) / float64(s.total)
		freq := s.from + (s.to-s.from)*progress
		// 线性衰减包络，避免结尾爆音
		amp := 0.3 * (1 - progress)
		v := amp * math.Sin(2*math.Pi*s.phase)
		samples[i][0] = v
		samples[i][1] = v

		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *Sweep) Err() error { return nil }

// Melody plays notes of equal length forever.
type Melody struct {
	rate    beep.SampleRate
	notes   []float64
	perNote int
	pos     int
	phase   float64
}

// NewMelody creates an endless melody streamer.
func NewMelody(rate beep.SampleRate, notes []float64, noteLen time.Duration) *Melody {
	return &Melody{rate: rate, notes: notes, perNote: rate.N(noteLen)}
}

func (m *Melody) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		note := (m.pos / m.perNote) % len(m.notes)
		within := float64(m.pos%m.perNote) / float64(m.perNote)
		// 每个音符做简单的起落
		amp := 0.12 * math.Sin(math.Pi*within)
		v := amp * math.Sin(2*math.Pi*m.phase)
		samples[i][0] = v
		samples[i][1] = v

		m.phase += m.notes[note] / float64(m.rate)
		m.phase -= math.Floor(m.phase)
		m.pos++
	}
	return len(samples), true
}

func (m *Melody) Err() error { return nil }
