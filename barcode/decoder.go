package barcode

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"receiving/core"
	"receiving/metrics"
)

// DefaultRegexTimeout bounds a single pattern match so a pathological pattern
// cannot stall a scan.
const DefaultRegexTimeout = 500 * time.Millisecond

// DefaultPatternCacheSize is the number of compiled patterns kept in memory.
const DefaultPatternCacheSize = 128

// ErrRegexTimeout is returned by Decode when the match timeout fired.
var ErrRegexTimeout = errors.New("regex evaluation timeout")

// Decoder matches raw scanned strings against configured barcode patterns.
// Compiled patterns are memoized by pattern text; the cache is safe for
// concurrent use.
type Decoder struct {
	timeout time.Duration
	cache   *lru.Cache[string, *regexp2.Regexp]
	logger  *zap.SugaredLogger
}

// NewDecoder creates a decoder. Non-positive arguments fall back to the defaults.
func NewDecoder(timeout time.Duration, cacheSize int, logger *zap.SugaredLogger) (*Decoder, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		timeout = DefaultRegexTimeout
	}
	if cacheSize <= 0 {
		cacheSize = DefaultPatternCacheSize
	}

	cache, err := lru.NewWithEvict[string, *regexp2.Regexp](cacheSize, func(string, *regexp2.Regexp) {
		metrics.PatternCacheEvictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}

	return &Decoder{timeout: timeout, cache: cache, logger: logger}, nil
}

// Decode matches raw against pattern and returns capture groups 1..MatchGroups
// in declaration order. The translated value is the last fragment.
//
// A nil slice with a nil error means the barcode did not match. A product-code
// pattern with zero match groups passes raw through as the single fragment; any
// other parse type treats zero match groups as a non-match. A pattern that fails
// to compile, or declares more groups than it has, is a precondition failure.
func (d *Decoder) Decode(pattern *core.BarcodePattern, raw string) ([]string, error) {
	if pattern == nil {
		return nil, core.NewPreconditionError(core.MsgBarcodePatternRequired)
	}

	if pattern.MatchGroups <= 0 {
		if pattern.ParseType == core.ParseTypeProductCode {
			return []string{raw}, nil
		}
		return nil, nil
	}

	re, err := d.compile(pattern.Pattern)
	if err != nil {
		return nil, core.WrapPrecondition(core.MsgBarcodePatternInvalid, err)
	}

	start := time.Now()
	m, err := re.FindStringMatch(raw)
	metrics.RegexExecutionDuration.WithLabelValues(pattern.ParseType.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "timeout") {
			metrics.RegexTimeouts.WithLabelValues(pattern.ParseType.String(), hashPattern(pattern.Pattern)).Inc()
			d.logger.Warnw("Barcode pattern match timed out",
				"parse_type", pattern.ParseType,
				"timeout", d.timeout,
				"input_length", len(raw))
			return nil, ErrRegexTimeout
		}
		return nil, fmt.Errorf("regex matching error: %w", err)
	}
	if m == nil {
		return nil, nil
	}

	if m.GroupCount()-1 < pattern.MatchGroups {
		return nil, core.WrapPrecondition(core.MsgBarcodePatternInvalid,
			fmt.Errorf("pattern declares %d match groups but has %d", pattern.MatchGroups, m.GroupCount()-1))
	}

	fragments := make([]string, 0, pattern.MatchGroups)
	for n := 1; n <= pattern.MatchGroups; n++ {
		g := m.GroupByNumber(n)
		if g == nil || len(g.Captures) == 0 {
			return nil, nil
		}
		fragments = append(fragments, g.String())
	}

	return fragments, nil
}

// compile returns the cached compiled pattern or compiles and caches it.
func (d *Decoder) compile(pattern string) (*regexp2.Regexp, error) {
	if re, ok := d.cache.Get(pattern); ok {
		return re, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile regex pattern: %w", err)
	}
	re.MatchTimeout = d.timeout

	d.cache.Add(pattern, re)
	return re, nil
}

// hashPattern creates a short hash of a pattern for metrics labeling
func hashPattern(pattern string) string {
	hash := sha256.Sum256([]byte(pattern))
	return hex.EncodeToString(hash[:])[:8]
}
