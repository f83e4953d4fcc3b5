// Package whatlang detects the language of short chat messages offline.
package whatlang

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/bnema/voxlate/internal/ports"
)

// DefaultMinConfidence is the score whatlanggo itself treats as reliable.
const DefaultMinConfidence = whatlanggo.ReliableConfidenceThreshold

type Detector struct {
	minConfidence float64
}

var _ ports.LanguageDetector = (*Detector)(nil)

// New returns a detector that reports "" unless whatlanggo marks its guess
// reliable and it scores at least minConfidence.
func New(minConfidence float64) *Detector {
	return &Detector{minConfidence: minConfidence}
}

// Detect returns the ISO 639-1 code of the detected language, or "" when
// nothing usable was found. Short messages such as "Hello" rarely qualify and
// are left to the remote translator to detect.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < d.minConfidence {
		return ""
	}

	return info.Lang.Iso6391()
}
