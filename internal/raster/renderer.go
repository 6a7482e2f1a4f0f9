// Package raster is a software implementation of the scene's rendering
// capability: quaternion rotation → world, lookAt view, perspective
// projection, z-buffered triangle fill over a flat framebuffer.
package raster

import (
	"image"

	"unicorn-orientviz/internal/mathutil"
	"unicorn-orientviz/internal/scene"
)

// Renderer rasterizes a scene mesh into an NRGBA frame. Supersample
// renders at an integer multiple of the target size and downsamples,
// standing in for MSAA.
type Renderer struct {
	Supersample int
}

// New returns a renderer with 2× supersampling.
func New() *Renderer {
	return &Renderer{Supersample: 2}
}

// Render implements scene.Renderer.
func (r *Renderer) Render(cam *scene.Camera, mesh *scene.Mesh, mat scene.Material, width, height int) *image.NRGBA {
	ss := r.Supersample
	if ss < 1 {
		ss = 1
	}
	rw, rh := width*ss, height*ss

	model := mathutil.QuatToMat3(mesh.Rotation)
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	// Transform every vertex once: world → camera (for normals and
	// depth) and camera → screen.
	camVerts := make([]mathutil.Vec3, len(mesh.Verts))
	px := make([]float64, len(mesh.Verts))
	py := make([]float64, len(mesh.Verts))
	dist := make([]float64, len(mesh.Verts))
	for i, v := range mesh.Verts {
		world := model.MulVec3(v)
		cv, _ := view.MulPoint(world)
		camVerts[i] = cv
		dist[i] = -cv[2]

		clip, w := proj.MulPoint(cv)
		if w < 1e-9 {
			w = 1e-9
		}
		ndcX, ndcY := clip[0]/w, clip[1]/w
		px[i] = (ndcX*0.5 + 0.5) * float64(rw)
		py[i] = (1 - (ndcY*0.5 + 0.5)) * float64(rh)
	}

	fb := NewFrameBuffer(rw, rh)
	for ti, tri := range mesh.Tris {
		// Skip triangles that poke through the near plane.
		if dist[tri[0]] <= cam.Near || dist[tri[1]] <= cam.Near || dist[tri[2]] <= cam.Near {
			continue
		}
		var uv [3][2]float64
		if ti < len(mesh.UVs) {
			uv = mesh.UVs[ti]
		}
		rasterizeTriangle(fb, px, py, dist, camVerts, tri, uv, mat)
	}

	img := image.NewNRGBA(image.Rect(0, 0, rw, rh))
	copy(img.Pix, fb.Color)

	if ss > 1 {
		img = Downsample(img, width, height)
	}
	return img
}
