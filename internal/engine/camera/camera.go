// Package camera provides an orbit camera for inspecting meshes.
package camera

import (
	gomath "math"

	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates around Target.
	Distance float32
	Pitch    float32 // radians above the XZ plane
	Yaw      float32 // radians around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	FovY       float32 // radians
	Near, Far  float32
	DragSpeed  float32 // radians per pixel
	WheelSpeed float32 // fraction of distance per wheel step
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:    200,
		Pitch:       0.6,
		MinDistance: 1,
		MaxDistance: 10000,
		MinPitch:    -1.5,
		MaxPitch:    1.5,
		FovY:        float32(gomath.Pi / 4),
		Near:        0.5,
		Far:         20000,
		DragSpeed:   0.01,
		WheelSpeed:  0.1,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp, sp := gomath.Cos(float64(c.Pitch)), gomath.Sin(float64(c.Pitch))
	cy, sy := gomath.Cos(float64(c.Yaw)), gomath.Sin(float64(c.Yaw))
	return c.Target.Add(math.Vec3{
		X: c.Distance * float32(cp*sy),
		Y: c.Distance * float32(sp),
		Z: c.Distance * float32(cp*cy),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Up)
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleDrag rotates the camera by a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSpeed
	c.Pitch = math.Clamp(c.Pitch+dy*c.DragSpeed, c.MinPitch, c.MaxPitch)
}

// HandleWheel moves the camera towards the target for positive steps.
func (c *OrbitCamera) HandleWheel(steps float32) {
	c.Distance = math.Clamp(c.Distance-steps*c.Distance*c.WheelSpeed, c.MinDistance, c.MaxDistance)
}

// FitToBounds centres the camera on box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(box geom.AABB) {
	if box.IsEmpty() {
		return
	}
	c.Target = box.Center()
	radius := box.Size().Length() * 0.5
	dist := radius / float32(gomath.Sin(float64(c.FovY)*0.5))
	c.Distance = math.Clamp(dist, c.MinDistance, c.MaxDistance)
	c.Far = max(c.Far, c.Distance+radius*4)
}

// ScreenRay returns the world-space ray through the pixel (sx, sy) of a
// viewport of size w x h.
func (c *OrbitCamera) ScreenRay(sx, sy, w, h float32) geom.Ray {
	inv := c.ViewProjection(w / h).Inverse()

	ndcX := 2*sx/w - 1
	ndcY := 1 - 2*sy/h
	near := inv.TransformVec3(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := inv.TransformVec3(math.Vec3{X: ndcX, Y: ndcY, Z: 1})
	return geom.NewRay(near, far.Sub(near))
}
