package transcode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuality is returned for a quality name outside the closed set.
var ErrInvalidQuality = errors.New("invalid quality")

// Quality selects the output size/fidelity trade-off. The set is closed;
// unknown names are rejected before any work starts.
type Quality int

const (
	QualityLow Quality = iota
	QualityMedium
	QualityHigh
)

// ParseQuality maps a case-insensitive quality name to its value.
func ParseQuality(name string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return QualityLow, nil
	case "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected low, medium, or high)", ErrInvalidQuality, name)
	}
}

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// Valid reports whether q is one of the three defined levels.
func (q Quality) Valid() bool {
	return q >= QualityLow && q <= QualityHigh
}

// CRF returns the constant rate factor handed to the encoder. Lower means
// higher fidelity and a larger file.
func (q Quality) CRF() int {
	switch q {
	case QualityLow:
		return 28
	case QualityHigh:
		return 18
	default:
		return 23
	}
}
