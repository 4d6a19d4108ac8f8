//go:build linux

// This file implements speech on Linux using espeak-ng.

package speech

import (
	"context"
	"fmt"
	"os/exec"
)

// espeakSynthesizer speaks through espeak-ng, or espeak when only the
// older binary is installed.
type espeakSynthesizer struct {
	bin string
}

// newPlatformSynthesizer creates the Linux synthesizer.
func newPlatformSynthesizer() Synthesizer {
	for _, bin := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(bin); err == nil {
			return &espeakSynthesizer{bin: path}
		}
	}
	return nil
}

func (s *espeakSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, s.bin, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("%s --voices failed: %w", s.bin, err)
	}
	return parseEspeakVoices(string(out)), nil
}

func (s *espeakSynthesizer) Speak(ctx context.Context, text string, voice Voice) error {
	var args []string
	if voice.ID != "" {
		args = append(args, "-v", voice.ID)
	}
	args = append(args, "--", text)

	if err := exec.CommandContext(ctx, s.bin, args...).Run(); err != nil {
		return fmt.Errorf("%s failed: %w", s.bin, err)
	}
	return nil
}
