package render

import (
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

var seqCache sync.Map

type seqKey struct {
	profile termenv.Profile
	hex     string
}

// colorSequence returns the SGR sequence selecting c as foreground, or ""
// when the profile has no color.
func colorSequence(profile termenv.Profile, c colorful.Color) string {
	key := seqKey{profile: profile, hex: c.Clamped().Hex()}
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	var seq string
	if tc := profile.Color(key.hex); tc != nil {
		if params := tc.Sequence(false); params != "" {
			seq = termenv.CSI + params + "m"
		}
	}
	seqCache.Store(key, seq)
	return seq
}

// ansiState suppresses repeated color sequences along a line.
type ansiState struct {
	profile termenv.Profile
	current string
	set     bool
}

func newANSIState(profile termenv.Profile) ansiState {
	return ansiState{profile: profile}
}

func (s *ansiState) use(sb *strings.Builder, c colorful.Color) {
	if s.profile == termenv.Ascii {
		return
	}
	seq := colorSequence(s.profile, c)
	if s.set && seq == s.current {
		return
	}
	sb.WriteString(seq)
	s.current = seq
	s.set = true
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == termenv.Ascii || !s.set {
		return
	}
	sb.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	s.set = false
	s.current = ""
}

// shade darkens c toward black; b in [0,1].
func shade(c colorful.Color, b float64) colorful.Color {
	b = min(1, max(0, b))
	return colorful.Color{R: c.R * b, G: c.G * b, B: c.B * b}
}
