package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/spf13/afero"
)

// ErrDecode is returned when a sound file cannot be decoded.
var ErrDecode = errors.New("decode sound")

// Decode opens path on fsys and decodes it by extension. The returned
// stream owns the file; closing it closes the file.
func Decode(fsys afero.Fs, path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: open %s: %v", ErrDecode, filepath.Base(path), err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		err = errors.New("unsupported extension")
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s: %v", ErrDecode, filepath.Base(path), err)
	}
	return stream, format, nil
}

// FileTrack decodes path into a track. With loop set the track repeats
// until stopped.
func FileTrack(fsys afero.Fs, path, name string, loop bool) (Track, beep.StreamSeekCloser, error) {
	stream, format, err := Decode(fsys, path)
	if err != nil {
		return Track{}, nil, err
	}
	if stream.Len() == 0 {
		_ = stream.Close()
		return Track{}, nil, fmt.Errorf("%w: %s: no audio frames", ErrDecode, filepath.Base(path))
	}

	t := Track{Name: name, Format: format}
	if loop {
		t.Streamer = beep.Loop(-1, stream)
	} else {
		t.Streamer = stream
		t.Length = format.SampleRate.D(stream.Len())
	}
	return t, stream, nil
}
