//go:build darwin

// This file implements speech on macOS using say.

package speech

import (
	"context"
	"fmt"
	"os/exec"
)

// saySynthesizer speaks through the macOS say command.
type saySynthesizer struct{}

// newPlatformSynthesizer creates the macOS synthesizer.
func newPlatformSynthesizer() Synthesizer {
	if _, err := exec.LookPath("say"); err != nil {
		return nil
	}
	return &saySynthesizer{}
}

func (s *saySynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, "say", "-v", "?").Output()
	if err != nil {
		return nil, fmt.Errorf("say -v ? failed: %w", err)
	}
	return parseSayVoices(string(out)), nil
}

func (s *saySynthesizer) Speak(ctx context.Context, text string, voice Voice) error {
	var args []string
	if voice.ID != "" {
		args = append(args, "-v", voice.ID)
	}
	args = append(args, "--", text)

	if err := exec.CommandContext(ctx, "say", args...).Run(); err != nil {
		return fmt.Errorf("say failed: %w", err)
	}
	return nil
}
