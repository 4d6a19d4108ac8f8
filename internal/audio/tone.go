package audio

import (
	"math"
	"time"

	"grilltimer/internal/sound"

	"github.com/faiface/beep"
)

// SampleRate is the output rate of synthesized tones and of the pulse sink.
const SampleRate beep.SampleRate = 44100

type note struct {
	freq  float64 // Hz; 0 is a rest
	dur   time.Duration
	decay float64 // envelope decay per second
}

var tonePatterns = map[sound.SystemSoundID][]note{
	sound.SystemAlarm: {
		{880, 180 * time.Millisecond, 4}, {0, 70 * time.Millisecond, 0},
		{880, 180 * time.Millisecond, 4}, {0, 70 * time.Millisecond, 0},
		{880, 180 * time.Millisecond, 4},
	},
	sound.SystemChime: {
		{1046.5, 250 * time.Millisecond, 6}, {784, 400 * time.Millisecond, 5},
	},
	sound.SystemTweet: {
		{2093, 60 * time.Millisecond, 20}, {2637, 60 * time.Millisecond, 20},
		{0, 40 * time.Millisecond, 0}, {2637, 80 * time.Millisecond, 20},
	},
	sound.SystemAnticipate: {
		{523.25, 120 * time.Millisecond, 3}, {659.25, 120 * time.Millisecond, 3},
		{783.99, 120 * time.Millisecond, 3}, {1046.5, 300 * time.Millisecond, 4},
	},
	sound.SystemBloom: {
		{392, 500 * time.Millisecond, 2}, {587.33, 500 * time.Millisecond, 3},
	},
	sound.SystemBeacon: {
		{1318.5, 100 * time.Millisecond, 8}, {0, 100 * time.Millisecond, 0},
		{1318.5, 100 * time.Millisecond, 8}, {0, 300 * time.Millisecond, 0},
		{987.77, 250 * time.Millisecond, 6},
	},
}

const toneVolume = 0.45

// ToneTrack synthesizes the system tone id as a one-pass track.
func ToneTrack(id sound.SystemSoundID) Track {
	pattern, ok := tonePatterns[id]
	if !ok {
		id = sound.DefaultSystemSound
		pattern = tonePatterns[id]
	}

	var samples [][2]float64
	var length time.Duration
	for _, n := range pattern {
		count := SampleRate.N(n.dur)
		for i := 0; i < count; i++ {
			var v float64
			if n.freq > 0 {
				t := float64(i) / float64(SampleRate)
				v = math.Sin(2*math.Pi*n.freq*t) * toneVolume * math.Exp(-t*n.decay)
			}
			samples = append(samples, [2]float64{v, v})
		}
		length += n.dur
	}

	return Track{
		Name:     id.String(),
		Streamer: sliceStreamer(samples),
		Format:   beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2},
		Length:   length,
	}
}

func sliceStreamer(samples [][2]float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, true
	})
}
