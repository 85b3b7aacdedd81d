// Package render projects particle layers through a perspective camera
// onto a colored Braille canvas.
package render

import (
	"math"

	"github.com/olivier-w/wishcake/internal/geom"
)

const (
	minPitch    = -1.4
	maxPitch    = 1.4
	minDistance = 6
	maxDistance = 40
	nearPlane   = 0.1
)

// Camera orbits a target point. Yaw 0 looks down -Z from the +Z side.
type Camera struct {
	Target   geom.Vec3
	Yaw      float64
	Pitch    float64
	Distance float64
	FOV      float64 // vertical, degrees

	home pose
}

type pose struct {
	yaw, pitch, distance float64
}

// NewCamera places the camera at pos looking at target.
func NewCamera(pos, target geom.Vec3, fov float64) *Camera {
	d := pos.Sub(target)
	c := &Camera{
		Target:   target,
		Yaw:      math.Atan2(d.X, d.Z),
		Pitch:    math.Atan2(d.Y, math.Hypot(d.X, d.Z)),
		Distance: d.Len(),
		FOV:      fov,
	}
	c.home = pose{yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
	return c
}

// DefaultCamera is the stage camera: [0,4,16] looking at the origin, 45°.
func DefaultCamera() *Camera {
	return NewCamera(geom.Vec3{Y: 4, Z: 16}, geom.Vec3{}, 45)
}

// Orbit rotates around the target. Pitch is clamped short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = min(maxPitch, max(minPitch, c.Pitch+dPitch))
}

// Zoom multiplies the distance by f within limits.
func (c *Camera) Zoom(f float64) {
	if f <= 0 {
		return
	}
	c.Distance = min(maxDistance, max(minDistance, c.Distance*f))
}

// Reset returns to the initial pose.
func (c *Camera) Reset() {
	c.Yaw, c.Pitch, c.Distance = c.home.yaw, c.home.pitch, c.home.distance
}

// Position returns the eye point.
func (c *Camera) Position() geom.Vec3 {
	sy, cy := math.Sincos(c.Yaw)
	sp, cp := math.Sincos(c.Pitch)
	return c.Target.Add(geom.Vec3{
		X: c.Distance * cp * sy,
		Y: c.Distance * sp,
		Z: c.Distance * cp * cy,
	})
}

// view is a camera frozen for one frame.
type view struct {
	eye            geom.Vec3
	right, up, fwd geom.Vec3
	focal          float64 // 1/tan(fov/2)
	aspect         float64 // width/height of the target surface
}

func (c *Camera) view(aspect float64) view {
	eye := c.Position()
	fwd := c.Target.Sub(eye).Normalize()
	right := fwd.Cross(geom.Vec3{Y: 1}).Normalize()
	up := right.Cross(fwd)
	return view{
		eye:    eye,
		right:  right,
		up:     up,
		fwd:    fwd,
		focal:  1 / math.Tan(c.FOV*math.Pi/360),
		aspect: aspect,
	}
}

// project maps p to normalized device coordinates in [-1,1] and its depth.
// ok is false behind the near plane.
func (v view) project(p geom.Vec3) (x, y, depth float64, ok bool) {
	d := p.Sub(v.eye)
	depth = d.Dot(v.fwd)
	if depth < nearPlane {
		return 0, 0, depth, false
	}
	x = d.Dot(v.right) * v.focal / (depth * v.aspect)
	y = d.Dot(v.up) * v.focal / depth
	return x, y, depth, true
}
