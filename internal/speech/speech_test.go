package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grilltimer/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefs struct {
	sound, voice, headphonesOnly bool
	message, voiceID             string
}

func (p *prefs) SoundEnabled() bool          { return p.sound }
func (p *prefs) VoiceEnabled() bool          { return p.voice }
func (p *prefs) HeadphonesOnly() bool        { return p.headphonesOnly }
func (p *prefs) AnnouncementMessage() string { return p.message }
func (p *prefs) VoiceID() string             { return p.voiceID }

type routes struct {
	connected bool
	err       error
	checks    int
}

func (r *routes) HeadphonesConnected() (bool, error) {
	r.checks++
	return r.connected, r.err
}

type spoken struct {
	text  string
	voice Voice
}

type fakeSynth struct {
	mu        *sync.Mutex
	log       *[]spoken
	voices    []Voice
	listCalls *int
}

func (s fakeSynth) Voices(ctx context.Context) ([]Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.listCalls++
	return s.voices, nil
}

func (s fakeSynth) Speak(ctx context.Context, text string, voice Voice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.log = append(*s.log, spoken{text, voice})
	return nil
}

type harness struct {
	clock       *clock.Fake
	prefs       *prefs
	routes      *routes
	announcer   *Announcer
	mu          sync.Mutex
	spoken      []spoken
	listCalls   int
	constructed int
}

var testVoices = []Voice{
	{ID: "Zoe", Name: "Zoe", Language: "en_US"},
	{ID: "Anna", Name: "Anna", Language: "de_DE"},
	{ID: "Daniel", Name: "Daniel", Language: "en_GB"},
	{ID: "en", Name: "English", Language: "en"},
}

func newHarness() *harness {
	h := &harness{
		clock:  clock.NewFake(time.Unix(0, 0)),
		prefs:  &prefs{sound: true, voice: true},
		routes: &routes{},
	}
	h.announcer = NewAnnouncer(Options{
		Prefs:  h.prefs,
		Routes: h.routes,
		NewSynthesizer: func() Synthesizer {
			h.mu.Lock()
			h.constructed++
			h.mu.Unlock()
			return fakeSynth{mu: &h.mu, log: &h.spoken, voices: testVoices, listCalls: &h.listCalls}
		},
		Voices: NewVoiceCatalog("en-US"),
		Clock:  h.clock,
	})
	return h
}

func (h *harness) said() []spoken {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]spoken(nil), h.spoken...)
}

func TestAnnounce_SpeaksAfterDelay(t *testing.T) {
	h := newHarness()

	d := h.announcer.AnnounceCompletion("interval-1", "Flip")
	assert.Equal(t, Scheduled, d)

	h.clock.Advance(999 * time.Millisecond)
	assert.Empty(t, h.said())

	h.clock.Advance(time.Millisecond)
	got := h.said()
	require.Len(t, got, 1)
	assert.Equal(t, "Flip timer is complete.", got[0].text)
	assert.Equal(t, "en", got[0].voice.ID, "bare family voice is the default")
}

func TestAnnounce_PreconditionOrder(t *testing.T) {
	tests := []struct {
		name   string
		prefs  prefs
		routes routes
		want   Decision
		checks int
	}{
		{"sound off wins", prefs{sound: false, voice: false, headphonesOnly: true}, routes{}, SkippedSoundDisabled, 0},
		{"voice off", prefs{sound: true, voice: false, headphonesOnly: true}, routes{}, SkippedVoiceDisabled, 0},
		{"no headphones", prefs{sound: true, voice: true, headphonesOnly: true}, routes{connected: false}, SkippedNoHeadphones, 1},
		{"route error", prefs{sound: true, voice: true, headphonesOnly: true}, routes{err: errors.New("no server")}, SkippedNoHeadphones, 1},
		{"headphones", prefs{sound: true, voice: true, headphonesOnly: true}, routes{connected: true}, Scheduled, 1},
		{"any route", prefs{sound: true, voice: true, headphonesOnly: false}, routes{}, Scheduled, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			*h.prefs = tt.prefs
			*h.routes = tt.routes

			assert.Equal(t, tt.want, h.announcer.AnnounceCompletion("interval-1", "Flip"))
			assert.Equal(t, tt.checks, h.routes.checks)

			h.clock.Advance(5 * time.Second)
			if tt.want == Scheduled {
				assert.Len(t, h.said(), 1)
			} else {
				assert.Empty(t, h.said())
				assert.Equal(t, 0, h.constructed)
			}
		})
	}
}

func TestAnnounce_CustomMessageAndVoice(t *testing.T) {
	h := newHarness()
	h.prefs.message = "Time to flip the {name}!"
	h.prefs.voiceID = "Daniel"

	h.announcer.AnnounceCompletion("x1", "Brisket")
	h.clock.Advance(time.Second)

	got := h.said()
	require.Len(t, got, 1)
	assert.Equal(t, "Time to flip the Brisket!", got[0].text)
	assert.Equal(t, "Daniel", got[0].voice.ID)
}

func TestAnnounce_UnknownVoiceFallsBack(t *testing.T) {
	h := newHarness()
	h.prefs.voiceID = "Anna" // exists, but not English

	h.announcer.AnnounceCompletion("interval-2", "Rest")
	h.clock.Advance(time.Second)

	got := h.said()
	require.Len(t, got, 1)
	assert.Equal(t, "en", got[0].voice.ID)
}

func TestAnnounce_FreshSynthesizerAndCachedVoices(t *testing.T) {
	h := newHarness()

	h.announcer.AnnounceCompletion("interval-1", "Flip")
	h.clock.Advance(time.Second)
	h.announcer.AnnounceCompletion("interval-2", "Rest")
	h.clock.Advance(time.Second)

	assert.Len(t, h.said(), 2)
	assert.Equal(t, 2, h.constructed)
	assert.Equal(t, 1, h.listCalls)
}

func TestAnnounce_CloseCancelsPending(t *testing.T) {
	h := newHarness()

	h.announcer.AnnounceCompletion("interval-1", "Flip")
	h.announcer.Close()
	h.clock.Advance(time.Minute)

	assert.Empty(t, h.said())
}

func TestAnnounce_SameTimerReplacesPending(t *testing.T) {
	h := newHarness()

	h.announcer.AnnounceCompletion("interval-1", "Flip")
	h.clock.Advance(500 * time.Millisecond)
	h.announcer.AnnounceCompletion("interval-1", "Flip")
	h.clock.Advance(time.Second)

	assert.Len(t, h.said(), 1)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Flip timer is complete.", Message("", "Flip"))
	assert.Equal(t, "Done", Message("  Done ", "Flip"))
}

func TestFilterVoices(t *testing.T) {
	got := FilterVoices(testVoices, "en")
	names := make([]string, len(got))
	for i, v := range got {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"Daniel", "English", "Zoe"}, names)
}

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 2  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 5  en-us           --/M      English_(America)  gmw/en-US            (en 10)
`
	voices := parseEspeakVoices(out)
	require.Len(t, voices, 3)
	assert.Equal(t, Voice{ID: "en-gb", Name: "English (Great Britain)", Language: "en-gb"}, voices[1])
	assert.Len(t, FilterVoices(voices, "en"), 2)
}

func TestParseSayVoices(t *testing.T) {
	out := `Alex                en_US    # Most people recognize me by my voice.
Eddy (English (US)) en_US    # Hello! My name is Eddy.
Anna                de_DE    # Hallo, ich heiße Anna.
`
	voices := parseSayVoices(out)
	require.Len(t, voices, 3)
	assert.Equal(t, "Eddy (English (US))", voices[1].ID)
	assert.Equal(t, "en_US", voices[1].Language)
	assert.Equal(t, "de", languageFamily(voices[2].Language))
}
