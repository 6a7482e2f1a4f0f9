// Package scene builds the minimal 3D scene the orientation widget draws:
// one perspective camera aimed at the origin, one cuboid mesh, and a
// renderer producing transparent-background frames. The renderer itself is
// an injected capability so the mapping and trigger logic stays testable
// without a real rasterizer.
package scene

import (
	"fmt"
	"image"
	"math"

	"unicorn-orientviz/internal/mathutil"
)

// Fixed scene parameters.
const (
	FOVDegrees = 70.0
	NearPlane  = 0.01
	FarPlane   = 10.0
	CuboidSide = 0.2
)

// ViewConfig holds the host element dimensions and camera placement.
type ViewConfig struct {
	Width, Height int
	CameraOffset  mathutil.Vec3
}

// Camera is a perspective camera looking at the world origin.
type Camera struct {
	Position mathutil.Vec3
	FOV      float64 // vertical field of view, degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// ViewMatrix returns the world-to-camera transform. The camera looks at
// the origin; the up hint flips to +Z when the view direction is
// (anti)parallel to +Y, which happens for the vertical camera offset.
func (c *Camera) ViewMatrix() mathutil.Mat4 {
	forward := c.Position.Neg().Normalize()
	up := mathutil.Vec3{0, 1, 0}
	if math.Abs(forward.Dot(up)) > 0.999 {
		up = mathutil.Vec3{0, 0, 1}
	}
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	// Rows are the camera basis; camera looks down -Z.
	rot := mathutil.Mat3{
		right[0], right[1], right[2],
		trueUp[0], trueUp[1], trueUp[2],
		-forward[0], -forward[1], -forward[2],
	}
	return mathutil.FromMat3Translation(rot, rot.MulVec3(c.Position).Neg())
}

// ProjectionMatrix returns the OpenGL-style perspective projection.
func (c *Camera) ProjectionMatrix() mathutil.Mat4 {
	f := 1.0 / math.Tan(mathutil.Deg2Rad(c.FOV)/2)
	nf := 1.0 / (c.Near - c.Far)
	return mathutil.Mat4{
		f / c.Aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (c.Far + c.Near) * nf, 2 * c.Far * c.Near * nf,
		0, 0, -1, 0,
	}
}

// Mesh is a triangle mesh with one absolute rotation. Each orientation
// update replaces Rotation outright; nothing accumulates.
type Mesh struct {
	Verts    []mathutil.Vec3
	Tris     [][3]int
	UVs      [][3][2]float64 // per-triangle vertex UVs, same index as Tris
	Rotation mathutil.Quat
}

// Material selects how triangle color is produced. The zero value is the
// normal-visualizing material (color from the view-space surface normal),
// which keeps rotation legible without any lighting setup. A non-nil
// Texture switches to textured shading.
type Material struct {
	Texture *image.NRGBA
}

// Renderer is the injected 3D-rendering capability.
type Renderer interface {
	// Render draws the mesh through the camera into a width×height
	// frame with a transparent clear color.
	Render(cam *Camera, mesh *Mesh, mat Material, width, height int) *image.NRGBA
}

// Handle owns the camera, the single mesh, and the renderer. It is
// exclusively owned by one view instance; all mutation happens on the
// notifier's goroutine.
type Handle struct {
	Camera   Camera
	Mesh     *Mesh
	Material Material

	renderer Renderer
	width    int
	height   int
	frame    *image.NRGBA
}

// New validates the view geometry, builds the scene, and renders one
// initial frame so the widget is never blank before the first sample.
func New(cfg ViewConfig, r Renderer) (*Handle, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("scene: degenerate view %dx%d", cfg.Width, cfg.Height)
	}
	if r == nil {
		return nil, fmt.Errorf("scene: nil renderer")
	}

	h := &Handle{
		Camera: Camera{
			Position: cfg.CameraOffset,
			FOV:      FOVDegrees,
			Aspect:   float64(cfg.Width) / float64(cfg.Height),
			Near:     NearPlane,
			Far:      FarPlane,
		},
		Mesh:     Cuboid(CuboidSide),
		renderer: r,
		width:    cfg.Width,
		height:   cfg.Height,
	}
	h.Render()
	return h, nil
}

// Render draws one frame with the mesh's current rotation and returns it.
func (h *Handle) Render() *image.NRGBA {
	h.frame = h.renderer.Render(&h.Camera, h.Mesh, h.Material, h.width, h.height)
	return h.frame
}

// Frame returns the most recently rendered frame.
func (h *Handle) Frame() *image.NRGBA {
	return h.frame
}
