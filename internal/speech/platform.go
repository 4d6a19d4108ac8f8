package speech

import "context"

type stubSynthesizer struct{}

func (stubSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	return nil, ErrUnsupported
}

func (stubSynthesizer) Speak(ctx context.Context, text string, voice Voice) error {
	return ErrUnsupported
}

// New creates a platform synthesizer. Platforms without one get a
// synthesizer whose calls fail with ErrUnsupported.
func New() Synthesizer {
	if s := newPlatformSynthesizer(); s != nil {
		return s
	}
	return stubSynthesizer{}
}

// Supported reports whether this platform has a speech engine installed.
func Supported() bool {
	return newPlatformSynthesizer() != nil
}
