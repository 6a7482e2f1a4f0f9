package raster

import (
	"bytes"
	"image"
	"math"
	"testing"

	"unicorn-orientviz/internal/mathutil"
	"unicorn-orientviz/internal/scene"
)

func testCamera(offset mathutil.Vec3, w, h int) *scene.Camera {
	return &scene.Camera{
		Position: offset,
		FOV:      scene.FOVDegrees,
		Aspect:   float64(w) / float64(h),
		Near:     scene.NearPlane,
		Far:      scene.FarPlane,
	}
}

func TestRenderFrameGeometry(t *testing.T) {
	const w, h = 64, 48
	r := &Renderer{Supersample: 1}
	cam := testCamera(mathutil.Vec3{-0.3, 0, 0}, w, h)
	mesh := scene.Cuboid(scene.CuboidSide)

	img := r.Render(cam, mesh, scene.Material{}, w, h)
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("frame bounds = %v, want %dx%d", img.Bounds(), w, h)
	}

	// The cuboid covers the center of the frame...
	if a := img.NRGBAAt(w/2, h/2).A; a != 255 {
		t.Errorf("center pixel alpha = %d, want 255", a)
	}
	// ...and the background stays transparent for compositing.
	for _, p := range [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if a := img.NRGBAAt(p[0], p[1]).A; a != 0 {
			t.Errorf("corner %v alpha = %d, want 0", p, a)
		}
	}
}

func TestRenderVerticalCameraOffset(t *testing.T) {
	// The reordered convention places the camera on the vertical axis;
	// the lookAt up-hint must not collapse.
	const w, h = 32, 32
	r := &Renderer{Supersample: 1}
	cam := testCamera(mathutil.Vec3{0, -0.3, 0}, w, h)
	img := r.Render(cam, scene.Cuboid(scene.CuboidSide), scene.Material{}, w, h)

	if a := img.NRGBAAt(w/2, h/2).A; a != 255 {
		t.Errorf("center pixel alpha = %d, want 255", a)
	}
	for i, v := range []float64{cam.ViewMatrix()[0], cam.ViewMatrix()[5]} {
		if math.IsNaN(v) {
			t.Fatalf("view matrix element %d is NaN", i)
		}
	}
}

func TestRotationChangesFrame(t *testing.T) {
	const w, h = 64, 64
	r := &Renderer{Supersample: 1}
	cam := testCamera(mathutil.Vec3{-0.3, 0, 0}, w, h)
	mesh := scene.Cuboid(scene.CuboidSide)

	before := r.Render(cam, mesh, scene.Material{}, w, h)
	mesh.Rotation = mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 0, 1}, 0.6)
	after := r.Render(cam, mesh, scene.Material{}, w, h)

	if bytes.Equal(before.Pix, after.Pix) {
		t.Fatal("rotating the mesh did not change the rendered frame")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	const w, h = 40, 40
	r := New()
	cam := testCamera(mathutil.Vec3{-0.3, 0, 0}, w, h)
	mesh := scene.Cuboid(scene.CuboidSide)
	mesh.Rotation = mathutil.QuatFromAxisAngle(mathutil.Vec3{1, 1, 0}, 0.4)

	a := r.Render(cam, mesh, scene.Material{}, w, h)
	b := r.Render(cam, mesh, scene.Material{}, w, h)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("same rotation rendered two different frames")
	}
}

func TestSupersampleOutputSize(t *testing.T) {
	const w, h = 30, 20
	r := &Renderer{Supersample: 3}
	cam := testCamera(mathutil.Vec3{-0.3, 0, 0}, w, h)
	img := r.Render(cam, scene.Cuboid(scene.CuboidSide), scene.Material{}, w, h)
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("supersampled frame bounds = %v, want %dx%d", img.Bounds(), w, h)
	}
}

func TestTexturedMaterial(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(tex.Pix); i += 4 {
		tex.Pix[i] = 200
		tex.Pix[i+3] = 255
	}

	const w, h = 32, 32
	r := &Renderer{Supersample: 1}
	cam := testCamera(mathutil.Vec3{-0.3, 0, 0}, w, h)
	img := r.Render(cam, scene.Cuboid(scene.CuboidSide), scene.Material{Texture: tex}, w, h)

	c := img.NRGBAAt(w/2, h/2)
	if c.A != 255 || c.R != 200 || c.G != 0 || c.B != 0 {
		t.Fatalf("textured center pixel = %+v, want solid 200,0,0", c)
	}
}
