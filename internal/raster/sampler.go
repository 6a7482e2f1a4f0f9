package raster

import "image"

// sampleTexture reads the texel nearest to (u, v), clamping to the edge.
func sampleTexture(tex *image.NRGBA, u, v float64) (uint8, uint8, uint8, uint8) {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	x := int(u * float64(w))
	y := int(v * float64(h))
	if x < 0 {
		x = 0
	}
	if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= h {
		y = h - 1
	}

	i := tex.PixOffset(b.Min.X+x, b.Min.Y+y)
	return tex.Pix[i], tex.Pix[i+1], tex.Pix[i+2], tex.Pix[i+3]
}
