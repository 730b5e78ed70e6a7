// Package linkguard classifies URLs as safe or unsafe. It combines a small
// local logistic model over hand-picked URL features with a second opinion
// from the generation provider. This is a best-effort heuristic, not a
// security guarantee.
package linkguard

import (
	"net/url"
	"regexp"
	"strings"
)

// FeatureCount is the dimensionality of the feature vector.
const FeatureCount = 10

var (
	ipPrefixRe = regexp.MustCompile(`^(http[s]?://)?(\d{1,3}\.){3}\d{1,3}`)

	shorteners = []string{"bit.ly", "goo.gl", "tinyurl", "ow.ly", "t.co", "is.gd", "buff.ly"}
)

// ExtractFeatures maps a raw URL string to the fixed numeric vector the
// model was trained on. Order matters and must match the training pipeline:
// length, dot count, IP-literal prefix, hyphens, at-signs, suspicious
// characters, path length, query length, https flag, shortener flag.
func ExtractFeatures(raw string) [FeatureCount]float64 {
	var f [FeatureCount]float64

	f[0] = float64(len(raw))
	f[1] = float64(strings.Count(raw, "."))
	if ipPrefixRe.MatchString(raw) {
		f[2] = 1
	}
	f[3] = float64(strings.Count(raw, "-"))
	f[4] = float64(strings.Count(raw, "@"))
	f[5] = float64(strings.Count(raw, "=") + strings.Count(raw, "&") + strings.Count(raw, "%"))

	if u, err := url.Parse(raw); err == nil {
		f[6] = float64(len(u.Path))
		f[7] = float64(len(u.RawQuery))
	}

	if strings.HasPrefix(raw, "https") {
		f[8] = 1
	}
	for _, s := range shorteners {
		if strings.Contains(raw, s) {
			f[9] = 1
			break
		}
	}

	return f
}
