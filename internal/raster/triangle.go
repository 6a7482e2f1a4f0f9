package raster

import (
	"math"

	"unicorn-orientviz/internal/mathutil"
	"unicorn-orientviz/internal/scene"
)

// rasterizeTriangle fills one triangle with flat per-face shading and a
// z-buffer test. This is the hot path, no allocation in the pixel loop.
//
// The default material colors the face from its camera-space normal
// (rgb = n·0.5+0.5), so every face of the cuboid reads as a distinct
// color and rotation stays visually legible with no lighting setup.
func rasterizeTriangle(
	fb *FrameBuffer,
	px, py, dist []float64,
	camVerts []mathutil.Vec3,
	tri [3]int,
	uv [3][2]float64,
	mat scene.Material,
) {
	i0, i1, i2 := tri[0], tri[1], tri[2]
	nv := len(px)
	if i0 < 0 || i1 < 0 || i2 < 0 || i0 >= nv || i1 >= nv || i2 >= nv {
		return
	}

	x0, y0, z0 := px[i0], py[i0], dist[i0]
	x1, y1, z1 := px[i1], py[i1], dist[i1]
	x2, y2, z2 := px[i2], py[i2], dist[i2]

	// Face normal in camera space, for the normal material.
	e1 := camVerts[i1].Sub(camVerts[i0])
	e2 := camVerts[i2].Sub(camVerts[i0])
	n := e1.Cross(e2).Normalize()
	if n.Len() < 0.5 {
		return // degenerate triangle
	}
	faceR := clamp255((n[0]*0.5 + 0.5) * 255)
	faceG := clamp255((n[1]*0.5 + 0.5) * 255)
	faceB := clamp255((n[2]*0.5 + 0.5) * 255)

	w, h := fb.Width, fb.Height
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1
	if minX < 0 {
		minX = 0
	}
	if maxX >= w {
		maxX = w - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup.
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	textured := mat.Texture != nil

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * w
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z >= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := faceR, faceG, faceB, uint8(255)
			if textured {
				u := w0*uv[0][0] + w1*uv[1][0] + w2*uv[2][0]
				v := w0*uv[0][1] + w1*uv[1][1] + w2*uv[2][1]
				cr, cg, cb, ca = sampleTexture(mat.Texture, u, v)
				if ca < 8 {
					continue // keep transparent texels transparent
				}
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = cr
			fb.Color[pxIdx+1] = cg
			fb.Color[pxIdx+2] = cb
			fb.Color[pxIdx+3] = ca
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
