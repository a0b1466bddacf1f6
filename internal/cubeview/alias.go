package cubeview

import (
	"math/rand"
	"strings"
	"time"
)

const aliasAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AliasSource produces cube table aliases: the last dot-segment of a
// dotted name, suffixed with a short random uppercase-alphanumeric token.
// Inject a seeded *rand.Rand for reproducible output in tests, per the
// compiler's requirement that alias generation be the only source of
// nondeterminism and that it be injectable.
type AliasSource struct {
	rnd *rand.Rand
}

// NewAliasSource wraps rnd for alias generation. A nil rnd falls back to a
// time-seeded source for production use outside of tests.
func NewAliasSource(rnd *rand.Rand) *AliasSource {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AliasSource{rnd: rnd}
}

func (s *AliasSource) token() string {
	n := 3 + s.rnd.Intn(4) // length 3-6
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(aliasAlphabet[s.rnd.Intn(len(aliasAlphabet))])
	}
	return b.String()
}

// Alias derives an alias from name's last dot-segment, regenerating the
// random token until it does not collide with anything in used. used is
// mutated to record the chosen alias.
func (s *AliasSource) Alias(name string, used map[string]bool) string {
	parts := strings.Split(name, ".")
	base := parts[len(parts)-1]
	for {
		candidate := base + "_" + s.token()
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
