package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"grilltimer/internal/clock"
	"grilltimer/internal/sound"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	started []*fakePlayback
	fail    error
	// streaming playbacks stay open after Stop until finished.
	streaming bool
}

type fakePlayback struct {
	*playback
	track Track
}

func (s *fakeSink) Start(t Track) (Playback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	pb := &fakePlayback{playback: newPlayback(), track: t}
	if s.streaming {
		pb.playback = newStreamingPlayback()
	}
	s.started = append(s.started, pb)
	return pb, nil
}

func (s *fakeSink) all() []*fakePlayback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakePlayback(nil), s.started...)
}

func (p *fakePlayback) stopped() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

type fakeSession struct {
	activateErr, deactivateErr error
	activations, deactivations int
}

func (s *fakeSession) Activate() error   { s.activations++; return s.activateErr }
func (s *fakeSession) Deactivate() error { s.deactivations++; return s.deactivateErr }

// doneRecorder collects completion callbacks.
type doneRecorder struct {
	mu   sync.Mutex
	errs []error
	ch   chan error
}

func newDoneRecorder() *doneRecorder {
	return &doneRecorder{ch: make(chan error, 8)}
}

func (r *doneRecorder) fn(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.ch <- err
}

func (r *doneRecorder) calls() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *doneRecorder) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback not called")
		return nil
	}
}

// pcmWAV builds a 16-bit mono PCM wav of n frames.
func pcmWAV(n int) []byte {
	var buf bytes.Buffer
	dataLen := uint32(n * 2)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))     // channels
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100)) // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	for i := 0; i < n; i++ {
		_ = binary.Write(&buf, binary.LittleEndian, int16((i%100)*200))
	}
	return buf.Bytes()
}

type controllerFixture struct {
	fs      afero.Fs
	clock   *clock.Fake
	sink    *fakeSink
	session *fakeSession
	ctrl    *Controller
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		fs:      afero.NewMemMapFs(),
		clock:   clock.NewFake(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)),
		sink:    &fakeSink{},
		session: &fakeSession{},
	}
	require.NoError(t, afero.WriteFile(f.fs, "/sounds/bell.wav", pcmWAV(4410), 0o644))
	require.NoError(t, afero.WriteFile(f.fs, "/sounds/horn.wav", pcmWAV(8820), 0o644))
	require.NoError(t, afero.WriteFile(f.fs, "/sounds/broken.wav", []byte("definitely not audio"), 0o644))
	f.ctrl = NewController(Options{Fs: f.fs, Sink: f.sink, Session: f.session, Clock: f.clock})
	return f
}

func fileSource(path, name string) sound.Source {
	return sound.Source{Tier: sound.TierCustom, Path: path, Name: name}
}

func TestPlay_SecondCallReplacesFirst(t *testing.T) {
	f := newControllerFixture(t)
	first, second := newDoneRecorder(), newDoneRecorder()

	require.NoError(t, f.ctrl.Play(fileSource("/sounds/bell.wav", "Bell"), true, first.fn))
	require.NoError(t, f.ctrl.Play(fileSource("/sounds/horn.wav", "Horn"), true, second.fn))

	assert.ErrorIs(t, first.wait(t), ErrInterrupted)

	started := f.sink.all()
	require.Len(t, started, 2)
	assert.True(t, started[0].stopped())
	assert.False(t, started[1].stopped())
	assert.Equal(t, "Horn", started[1].track.Name)

	active, ok := f.ctrl.Active()
	require.True(t, ok)
	assert.Equal(t, "Horn", active.Name)
	assert.Empty(t, second.calls())
	assert.Equal(t, 1, f.session.activations, "session stays active across plays")
}

func TestPlay_OneShotFileCompletes(t *testing.T) {
	f := newControllerFixture(t)
	done := newDoneRecorder()

	require.NoError(t, f.ctrl.Play(fileSource("/sounds/bell.wav", "Bell"), false, done.fn))
	started := f.sink.all()
	require.Len(t, started, 1)
	assert.Equal(t, 100*time.Millisecond, started[0].track.Length)

	started[0].finish(nil)
	assert.NoError(t, done.wait(t))

	require.Eventually(t, func() bool {
		_, ok := f.ctrl.Active()
		return !ok
	}, time.Second, 5*time.Millisecond)

	f.ctrl.Stop()
	assert.Len(t, done.calls(), 1, "stop after completion must not call back again")
}

func TestPlay_LoopingFileIsUnbounded(t *testing.T) {
	f := newControllerFixture(t)

	require.NoError(t, f.ctrl.Play(fileSource("/sounds/bell.wav", "Bell"), true, nil))
	started := f.sink.all()
	require.Len(t, started, 1)
	assert.Zero(t, started[0].track.Length)

	buf := make([][2]float64, 8000)
	n, ok := started[0].track.Streamer.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 8000, n, "loop continues past the 4410-frame file")
}

// closeTrackingFs records which opened files have been closed.
type closeTrackingFs struct {
	afero.Fs
	mu     sync.Mutex
	closed map[string]bool
}

type trackedFile struct {
	afero.File
	fs *closeTrackingFs
}

func (f *closeTrackingFs) Open(name string) (afero.File, error) {
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.closed[name] = false
	f.mu.Unlock()
	return &trackedFile{File: file, fs: f}, nil
}

func (f *closeTrackingFs) isClosed(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed[name]
}

func (t *trackedFile) Close() error {
	t.fs.mu.Lock()
	t.fs.closed[t.Name()] = true
	t.fs.mu.Unlock()
	return t.File.Close()
}

func TestPlay_DecoderOutlivesStoppedStream(t *testing.T) {
	f := newControllerFixture(t)
	fsys := &closeTrackingFs{Fs: f.fs, closed: map[string]bool{}}
	sink := &fakeSink{streaming: true}
	ctrl := NewController(Options{Fs: fsys, Sink: sink, Session: f.session, Clock: f.clock})
	done := newDoneRecorder()

	require.NoError(t, ctrl.Play(fileSource("/sounds/bell.wav", "Bell"), false, done.fn))
	ctrl.Stop()
	assert.ErrorIs(t, done.wait(t), ErrInterrupted)

	pb := sink.all()[0]
	assert.True(t, pb.stopped())
	assert.False(t, fsys.isClosed("/sounds/bell.wav"), "decoder closed while output may still read it")

	buf := make([][2]float64, 512)
	n, ok := pb.track.Streamer.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 512, n)

	pb.finish(nil)
	require.Eventually(t, func() bool {
		return fsys.isClosed("/sounds/bell.wav")
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, done.calls(), 1)
}

func TestPlay_PlaybackErrorReachesCallback(t *testing.T) {
	f := newControllerFixture(t)
	done := newDoneRecorder()
	boom := errors.New("server went away")

	require.NoError(t, f.ctrl.Play(fileSource("/sounds/bell.wav", "Bell"), true, done.fn))
	f.sink.all()[0].finish(boom)

	assert.ErrorIs(t, done.wait(t), boom)
}

func TestPlay_DecodeFailure(t *testing.T) {
	f := newControllerFixture(t)
	done := newDoneRecorder()

	err := f.ctrl.Play(fileSource("/sounds/broken.wav", "Broken"), true, done.fn)
	require.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, done.wait(t), ErrDecode)
	assert.Empty(t, f.sink.all())

	_, ok := f.ctrl.Active()
	assert.False(t, ok)

	err = f.ctrl.Play(fileSource("/sounds/missing.mp3", "Missing"), false, nil)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestPlay_SinkFailure(t *testing.T) {
	f := newControllerFixture(t)
	f.sink.fail = errors.New("no device")
	done := newDoneRecorder()

	err := f.ctrl.Play(sound.SystemSource(sound.SystemChime), false, done.fn)
	require.Error(t, err)
	assert.Error(t, done.wait(t))
	assert.Len(t, done.calls(), 1)
}

func TestPlay_SystemToneOneShot(t *testing.T) {
	f := newControllerFixture(t)
	done := newDoneRecorder()

	require.NoError(t, f.ctrl.Play(sound.SystemSource(sound.SystemAlarm), false, done.fn))
	f.clock.Advance(1999 * time.Millisecond)
	assert.Empty(t, done.calls())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, []error{nil}, done.calls())
	assert.Len(t, f.sink.all(), 1)

	_, ok := f.ctrl.Active()
	assert.False(t, ok)
}

func TestPlay_SystemToneLoopReplays(t *testing.T) {
	f := newControllerFixture(t)
	done := newDoneRecorder()

	require.NoError(t, f.ctrl.Play(sound.SystemSource(sound.SystemBeacon), true, done.fn))
	f.clock.Advance(2 * time.Second)
	f.clock.Advance(2 * time.Second)
	f.clock.Advance(2 * time.Second)

	started := f.sink.all()
	require.Len(t, started, 4)
	for _, pb := range started[:3] {
		assert.True(t, pb.stopped())
	}
	assert.Empty(t, done.calls())

	f.ctrl.Stop()
	f.ctrl.Stop()
	f.clock.Advance(10 * time.Second)

	assert.Len(t, f.sink.all(), 4, "no replay after stop")
	calls := done.calls()
	require.Len(t, calls, 1)
	assert.ErrorIs(t, calls[0], ErrInterrupted)
	assert.Equal(t, 1, f.session.deactivations)
}

func TestSession_FailuresAreNotFatal(t *testing.T) {
	f := newControllerFixture(t)
	f.session.activateErr = errors.New("busy")

	require.NoError(t, f.ctrl.Play(sound.SystemSource(sound.SystemChime), true, nil))
	assert.Len(t, f.sink.all(), 1, "playback attempted despite activation failure")
	f.ctrl.Stop()
	assert.Equal(t, 0, f.session.deactivations)

	f.session.activateErr = nil
	f.session.deactivateErr = errors.New("still busy")
	require.NoError(t, f.ctrl.Play(sound.SystemSource(sound.SystemChime), true, nil))
	f.ctrl.Stop()
	assert.Equal(t, 1, f.session.deactivations)
}

func TestStop_Idle(t *testing.T) {
	f := newControllerFixture(t)
	f.ctrl.Stop()
	f.ctrl.Stop()
	assert.Equal(t, 0, f.session.deactivations)
}

func TestNullSink_CompletesBoundedTracks(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	sink := NullSink{Clock: fake}

	pb, err := sink.Start(ToneTrack(sound.SystemChime))
	require.NoError(t, err)
	fake.Advance(time.Second)
	select {
	case <-pb.Done():
	default:
		t.Fatal("bounded track did not complete")
	}

	pb, err = sink.Start(Track{Name: "loop"})
	require.NoError(t, err)
	fake.Advance(time.Hour)
	select {
	case <-pb.Done():
		t.Fatal("unbounded track completed on its own")
	default:
	}
	pb.Stop()
	<-pb.Done()
}
