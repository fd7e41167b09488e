package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// maxSuggestionDistance is the largest edit distance offered as a
// "did you mean" suggestion.
const maxSuggestionDistance = 3

// knownKeys is sorted so equal-distance suggestions are deterministic.
var knownKeys = []string{
	"auth_timeout",
	"credentials_file",
	"credentials_kind",
	"debug",
	"no_browser",
	"scopes",
	"serve.http_addr",
	"serve.metrics_addr",
	"serve.metrics_enabled",
	"serve.transport",
	"serve.yolo",
	"token_file",
}

func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error
	for _, key := range md.Undecoded() {
		name := key.String()
		if s := closestKey(name); s != "" {
			errs = append(errs, fmt.Errorf("unknown config key %q, did you mean %q?", name, s))
		} else {
			errs = append(errs, fmt.Errorf("unknown config key %q", name))
		}
	}
	return errors.Join(errs...)
}

func closestKey(unknown string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, k := range knownKeys {
		if d := levenshtein(unknown, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := range len(a) {
		curr[0] = i + 1
		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
