package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer rewrites a raw input line before it is tokenised.
type Normalizer func(string) string

// NewNormalizer returns the normalizer for a Unicode form name. "none" and
// the empty string return nil, meaning lines are used as read.
func NewNormalizer(form string) (Normalizer, error) {
	switch strings.ToLower(strings.TrimSpace(form)) {
	case "", "none":
		return nil, nil
	case "nfc":
		return norm.NFC.String, nil
	case "nfkc":
		return norm.NFKC.String, nil
	default:
		return nil, fmt.Errorf("unsupported normalisation form %q", form)
	}
}
