package scene

import "unicorn-orientviz/internal/mathutil"

// Cuboid returns an origin-centered box with the given side length and
// the identity rotation. Every face maps the full [0,1]² texture range.
func Cuboid(side float64) *Mesh {
	h := side / 2
	verts := []mathutil.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}

	// Two triangles per face, wound counter-clockwise seen from outside.
	faces := [][4]int{
		{4, 5, 6, 7}, // +Z
		{1, 0, 3, 2}, // -Z
		{5, 1, 2, 6}, // +X
		{0, 4, 7, 3}, // -X
		{7, 6, 2, 3}, // +Y
		{0, 1, 5, 4}, // -Y
	}

	m := &Mesh{
		Verts:    verts,
		Rotation: mathutil.QuatIdentity(),
	}
	for _, f := range faces {
		m.Tris = append(m.Tris,
			[3]int{f[0], f[1], f[2]},
			[3]int{f[0], f[2], f[3]},
		)
		m.UVs = append(m.UVs,
			[3][2]float64{{0, 0}, {1, 0}, {1, 1}},
			[3][2]float64{{0, 0}, {1, 1}, {0, 1}},
		)
	}
	return m
}
