// Package glyph turns digit characters into extruded, triangulated solids
// that the surface sampler can consume. Outlines come from the Go Bold font;
// the outline is rasterized onto a fine grid and the grid is extruded, which
// keeps counters (the holes in 0, 6, 8, 9) intact without polygon
// triangulation.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/olivier-w/wishcake/internal/geom"
)

// ErrUnsupported is returned for descriptors the provider cannot build.
var ErrUnsupported = errors.New("glyph: unsupported descriptor")

// Options controls glyph solid dimensions, in world units.
type Options struct {
	// Size is the em size; a digit is roughly 0.7*Size tall.
	Size float64
	// Depth is the extrusion depth along Z.
	Depth float64
	// Resolution is the rasterization ppem. Higher is smoother and heavier.
	Resolution int
}

// DefaultOptions matches the countdown digits: size 4, depth 0.5.
func DefaultOptions() Options {
	return Options{Size: 4, Depth: 0.5, Resolution: 48}
}

// Provider builds and caches digit solids. Returned meshes are shared and
// must be treated as read-only.
type Provider struct {
	opts  Options
	font  *sfnt.Font
	buf   sfnt.Buffer
	cache map[rune]*geom.Mesh
}

// NewProvider parses the embedded font.
func NewProvider(opts Options) (*Provider, error) {
	if opts.Size <= 0 || opts.Depth <= 0 || opts.Resolution < 8 {
		return nil, fmt.Errorf("glyph: invalid options %+v", opts)
	}
	f, err := sfnt.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %w", err)
	}
	return &Provider{
		opts:  opts,
		font:  f,
		cache: make(map[rune]*geom.Mesh),
	}, nil
}

// Digit returns the solid for a single decimal digit.
func (p *Provider) Digit(n int) (*geom.Mesh, error) {
	if n < 0 || n > 9 {
		return nil, fmt.Errorf("%w: digit %d", ErrUnsupported, n)
	}
	return p.Rune(rune('0' + n))
}

// Rune returns the solid for r, building it on first use.
func (p *Provider) Rune(r rune) (*geom.Mesh, error) {
	if m, ok := p.cache[r]; ok {
		return m, nil
	}
	mask, err := p.rasterize(r)
	if err != nil {
		return nil, err
	}
	m := extrude(mask, p.opts.Size/float64(p.opts.Resolution), p.opts.Depth)
	if len(m.Triangles) == 0 {
		return nil, fmt.Errorf("%w: %q has no outline", ErrUnsupported, r)
	}
	m.Center()
	p.cache[r] = m
	return m, nil
}

func (p *Provider) rasterize(r rune) (*image.Alpha, error) {
	idx, err := p.font.GlyphIndex(&p.buf, r)
	if err != nil {
		return nil, fmt.Errorf("glyph index for %q: %w", r, err)
	}
	if idx == 0 {
		return nil, fmt.Errorf("%w: %q not in font", ErrUnsupported, r)
	}

	ppem := fixed.I(p.opts.Resolution)
	bounds, _, err := p.font.GlyphBounds(&p.buf, idx, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("glyph bounds for %q: %w", r, err)
	}
	segs, err := p.font.LoadGlyph(&p.buf, idx, ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("loading glyph %q: %w", r, err)
	}

	// One pixel of padding on each side so edge cells always have an
	// empty neighbor.
	minX := bounds.Min.X.Floor() - 1
	minY := bounds.Min.Y.Floor() - 1
	w := bounds.Max.X.Ceil() - minX + 1
	h := bounds.Max.Y.Ceil() - minY + 1
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %q has empty bounds", ErrUnsupported, r)
	}

	ox, oy := float32(minX), float32(minY)
	pt := func(v fixed.Point26_6) (float32, float32) {
		return float32(v.X)/64 - ox, float32(v.Y)/64 - oy
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := pt(s.Args[0])
			z.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(s.Args[0])
			z.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			dx, dy := pt(s.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	z.ClosePath()

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst, nil
}
