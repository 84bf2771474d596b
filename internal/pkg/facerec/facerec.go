// Package facerec matches detected faces against a gallery of known students.
// Detection and encoding are delegated to an Encoder; matching is local.
package facerec

import (
	"context"
	"errors"
	"math"
)

// DefaultTolerance is the distance at or below which two encodings are
// considered the same person.
const DefaultTolerance = 0.6

// ErrEncoderUnavailable is returned when no encoder backend is configured or
// the configured one cannot serve requests.
var ErrEncoderUnavailable = errors.New("face encoder is unavailable")

// Box is a face location in image pixels
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Face is one detected face with its encoding
type Face struct {
	Box      Box       `json:"box"`
	Encoding []float64 `json:"encoding"`
}

// Encoder detects faces in an image and returns their encodings.
type Encoder interface {
	Encode(ctx context.Context, image []byte) ([]Face, error)
}

// Distance is the Euclidean distance between two encodings. Encodings of
// different length never match.
func Distance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Entry is a known face
type Entry struct {
	StudentID int64
	Name      string
	Encoding  []float64
}

// Gallery is an immutable set of known faces
type Gallery struct {
	entries   []Entry
	tolerance float64
}

// NewGallery builds a gallery; a non-positive tolerance uses DefaultTolerance.
func NewGallery(entries []Entry, tolerance float64) *Gallery {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Gallery{entries: entries, tolerance: tolerance}
}

// Len returns the number of known faces
func (g *Gallery) Len() int {
	return len(g.entries)
}

// Match is the result of comparing one face to the gallery
type Match struct {
	Entry    Entry
	Distance float64
	Known    bool
}

// Match returns the closest entry. Known is set only when that entry is
// within tolerance.
func (g *Gallery) Match(encoding []float64) Match {
	best := Match{Distance: math.Inf(1)}
	for _, e := range g.entries {
		if d := Distance(e.Encoding, encoding); d < best.Distance {
			best = Match{Entry: e, Distance: d}
		}
	}
	best.Known = best.Distance <= g.tolerance
	return best
}
