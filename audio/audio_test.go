package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
)

func drain(s interface {
	Stream([][2]float64) (int, bool)
}, buf int) int {
	total := 0
	samples := make([][2]float64, buf)
	for {
		n, ok := s.Stream(samples)
		total += n
		if !ok {
			return total
		}
	}
}

func TestSweepLength(t *testing.T) {
	sweep := NewSweep(sampleRate, 440, 80, 100*time.Millisecond)
	assert.Equal(t, sampleRate.N(100*time.Millisecond), drain(sweep, 512))
	assert.NoError(t, sweep.Err())

	n, ok := sweep.Stream(make([][2]float64, 16))
	assert.Equal(t, 0, n)
	assert.False(t, ok)
}

func TestSweepAmplitude(t *testing.T) {
	sweep := NewSweep(sampleRate, 660, 1320, 50*time.Millisecond)
	samples := make([][2]float64, 1024)
	n, ok := sweep.Stream(samples)
	assert.True(t, ok)
	for _, s := range samples[:n] {
		assert.LessOrEqual(t, math.Abs(s[0]), 0.3)
		assert.Equal(t, s[0], s[1])
	}
}

func TestMelodyEndless(t *testing.T) {
	m := NewMelody(sampleRate, backgroundNotes, 10*time.Millisecond)
	samples := make([][2]float64, 4096)
	for i := 0; i < 20; i++ {
		n, ok := m.Stream(samples)
		assert.True(t, ok)
		assert.Equal(t, len(samples), n)
	}
}

func TestUninitializedManagerIsSilent(t *testing.T) {
	sm := NewSoundManager()
	// none of these touch the speaker before Initialize
	sm.Background()
	sm.Eat()
	sm.Death()
	sm.Cleanup()
	assert.Nil(t, sm.background)
	assert.Nil(t, sm.death)
}

func TestRestartsDoNotAccumulateStreams(t *testing.T) {
	sm := &SoundManager{mixer: &beep.Mixer{}, initialized: true}
	buf := make([][2]float64, 512)

	for i := 0; i < 10; i++ {
		sm.Background()
		sm.mixer.Stream(buf)
		assert.LessOrEqual(t, sm.mixer.Len(), 1, "after background %d", i)

		sm.Death()
		sm.mixer.Stream(buf)
		assert.LessOrEqual(t, sm.mixer.Len(), 1, "after death %d", i)
	}

	sm.Background()
	sm.Background()
	sm.mixer.Stream(buf)
	assert.Equal(t, 1, sm.mixer.Len())
	assert.NotNil(t, sm.background.Streamer)
}
