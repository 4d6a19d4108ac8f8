//go:build !darwin && !linux

// This file provides the fallback for platforms without a speech engine.

package speech

// newPlatformSynthesizer reports no synthesizer.
func newPlatformSynthesizer() Synthesizer {
	return nil
}
