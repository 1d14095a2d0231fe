package engine

import (
	"fmt"
	"log"
	"strings"
)

// Debug enables verbose diagnostics (truncated bounce paths, per-ray dumps).
var Debug = false

func debugf(format string, args ...interface{}) {
	if Debug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Trace records the solids a single sample ray bounced off. It belongs to
// one call of RenderRay and must not be shared between samples.
// A nil *Trace records nothing.
type Trace struct {
	Bounces   []Solid
	Truncated bool // the bounce limit was reached
}

func (t *Trace) hit(s Solid) {
	if t == nil {
		return
	}
	t.Bounces = append(t.Bounces, s)
}

func (t *Trace) truncate() {
	if t == nil {
		return
	}
	t.Truncated = true
}

func (t *Trace) reset() {
	t.Bounces = t.Bounces[:0]
	t.Truncated = false
}

func (t *Trace) String() string {
	parts := make([]string, len(t.Bounces))
	for i, s := range t.Bounces {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, " -> ")
}
