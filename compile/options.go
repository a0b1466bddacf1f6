package compile

import "math/rand"

// Options configures a compilation. The zero value is usable: it seeds
// alias generation from the system clock, keeps the reference source's
// bit-compatible GROUP BY and sort-direction behavior, and discards debug
// output.
type Options struct {
	// Rand seeds table-alias generation. Inject a deterministic source
	// (e.g. rand.New(rand.NewSource(1))) for reproducible output in tests;
	// nil falls back to a time-seeded source.
	Rand *rand.Rand

	// SuppressEmptyGroupBy, when true, only emits a single-cube GROUP BY
	// when at least one metric or window metric is also selected. The
	// reference compiler emits GROUP BY whenever any dimension is
	// selected, even alone; that is the default (false) here too, for
	// bit-compatibility. See SPEC_FULL.md open question 1.
	SuppressEmptyGroupBy bool

	// EmitSortDirection, when true, appends "desc" to ORDER BY positions
	// for descending sorts. The reference compiler parses but never emits
	// the desc flag; that remains the default (false). See SPEC_FULL.md
	// open question 2.
	EmitSortDirection bool

	// Debugf, if set, receives a trace-id-prefixed line after needed-cube
	// resolution and at the single- or multi-cube dispatch (with the
	// chosen aliases). Nil discards it.
	Debugf func(format string, args ...interface{})

	// TraceID tags Debugf output for this compilation. Empty generates a
	// fresh one via google/uuid.
	TraceID string
}

func (o *Options) debugf() func(string, ...interface{}) {
	if o == nil || o.Debugf == nil {
		return func(string, ...interface{}) {}
	}
	return o.Debugf
}
