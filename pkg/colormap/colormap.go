// Package colormap maps scalar attribute values to vertex colors using
// named color ramps in the style of scientific visualization tools.
package colormap

import "github.com/echolmy/vtkmesh/pkg/mesh"

// ColorMap is a named ramp of control colors. Values in [0,1] interpolate
// linearly between neighboring entries.
type ColorMap struct {
	Name   string
	Colors []mesh.RGBA
}

// InterpolatedColor maps a normalized value in [0,1] to a color. Values
// outside the range clamp to the ends; an empty ramp yields white.
func (m ColorMap) InterpolatedColor(value float32) mesh.RGBA {
	if len(m.Colors) == 0 {
		return mesh.White
	}
	if len(m.Colors) == 1 {
		return m.Colors[0]
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	pos := value * float32(len(m.Colors)-1)
	lower := int(pos)
	upper := lower + 1
	if upper > len(m.Colors)-1 {
		upper = len(m.Colors) - 1
	}
	if lower == upper {
		return m.Colors[lower]
	}
	return m.Colors[lower].Lerp(m.Colors[upper], pos-float32(lower))
}

// Get returns the ramp registered under name. Unknown names fall back to
// the default rainbow ramp.
func Get(name string) ColorMap {
	switch name {
	case "viridis":
		return Viridis()
	case "hot":
		return Hot()
	case "cool":
		return Cool()
	case "warm":
		return Warm()
	default:
		return Default()
	}
}

// Default is a rainbow ramp from deep blue through green to red.
func Default() ColorMap {
	return ColorMap{
		Name: "default",
		Colors: []mesh.RGBA{
			{0, 0, 0.6, 1},
			{0, 0, 0.7, 1},
			{0, 0, 0.8, 1},
			{0, 0, 0.9, 1},
			{0, 0, 1, 1},
			{0, 0.2, 1, 1},
			{0, 0.4, 1, 1},
			{0, 0.6, 1, 1},
			{0, 0.8, 1, 1},
			{0, 1, 1, 1},
			{0, 1, 0.8, 1},
			{0, 1, 0.6, 1},
			{0, 1, 0.4, 1},
			{0, 1, 0.2, 1},
			{0, 1, 0, 1},
			{0.2, 1, 0, 1},
			{0.4, 1, 0, 1},
			{0.6, 1, 0, 1},
			{0.8, 1, 0, 1},
			{1, 1, 0, 1},
			{1, 0.6, 0, 1},
			{1, 0, 0, 1},
		},
	}
}

// Hot is a heatmap ramp from black through red to white.
func Hot() ColorMap {
	return ColorMap{
		Name: "hot",
		Colors: []mesh.RGBA{
			{0, 0, 0, 1},
			{0.1, 0, 0, 1},
			{0.2, 0, 0, 1},
			{0.3, 0, 0, 1},
			{0.4, 0, 0, 1},
			{0.5, 0, 0, 1},
			{0.6, 0, 0, 1},
			{0.7, 0, 0, 1},
			{0.8, 0, 0, 1},
			{0.9, 0, 0, 1},
			{1, 0, 0, 1},
			{1, 0.1, 0, 1},
			{1, 0.2, 0, 1},
			{1, 0.3, 0, 1},
			{1, 0.4, 0, 1},
			{1, 0.5, 0, 1},
			{1, 0.6, 0, 1},
			{1, 0.7, 0, 1},
			{1, 0.8, 0, 1},
			{1, 0.9, 0, 1},
			{1, 1, 0, 1},
			{1, 1, 1, 1},
		},
	}
}

// Viridis is the perceptually uniform ramp common in scientific plots.
func Viridis() ColorMap {
	return ColorMap{
		Name: "viridis",
		Colors: []mesh.RGBA{
			{0.267004, 0.004874, 0.329415, 1},
			{0.275191, 0.060826, 0.390374, 1},
			{0.282623, 0.140926, 0.457517, 1},
			{0.285109, 0.195242, 0.495702, 1},
			{0.253935, 0.265254, 0.529983, 1},
			{0.230341, 0.318626, 0.545695, 1},
			{0.206756, 0.371758, 0.553117, 1},
			{0.184586, 0.423943, 0.556295, 1},
			{0.163625, 0.471133, 0.558148, 1},
			{0.144544, 0.516775, 0.557885, 1},
			{0.127568, 0.566949, 0.550556, 1},
			{0.131109, 0.616355, 0.533488, 1},
			{0.134692, 0.658636, 0.517649, 1},
			{0.177423, 0.699873, 0.490448, 1},
			{0.266941, 0.748751, 0.440573, 1},
			{0.369214, 0.788888, 0.382914, 1},
			{0.477504, 0.821444, 0.318195, 1},
			{0.590330, 0.851556, 0.248701, 1},
			{0.706680, 0.877588, 0.175630, 1},
			{0.741388, 0.873449, 0.149561, 1},
			{0.865006, 0.897915, 0.145833, 1},
			{0.993248, 0.906157, 0.143936, 1},
		},
	}
}

// Cool runs from deep blue through cyan toward white.
func Cool() ColorMap {
	return ColorMap{
		Name: "cool",
		Colors: []mesh.RGBA{
			{0, 0, 0.3, 1},
			{0, 0, 0.4, 1},
			{0, 0, 0.5, 1},
			{0, 0, 0.6, 1},
			{0, 0, 0.7, 1},
			{0, 0, 0.8, 1},
			{0, 0, 0.9, 1},
			{0, 0, 1, 1},
			{0, 0.1, 1, 1},
			{0, 0.2, 1, 1},
			{0, 0.3, 1, 1},
			{0, 0.4, 1, 1},
			{0, 0.5, 1, 1},
			{0, 0.6, 1, 1},
			{0, 0.7, 1, 1},
			{0, 0.8, 1, 1},
			{0, 0.9, 1, 1},
			{0, 1, 1, 1},
			{0.2, 1, 1, 1},
			{0.4, 1, 1, 1},
			{0.6, 1, 1, 1},
			{0.8, 1, 1, 1},
		},
	}
}

// Warm runs from dark red through yellow toward white.
func Warm() ColorMap {
	return ColorMap{
		Name: "warm",
		Colors: []mesh.RGBA{
			{0.4, 0, 0, 1},
			{0.5, 0, 0, 1},
			{0.6, 0, 0, 1},
			{0.7, 0, 0, 1},
			{0.8, 0, 0, 1},
			{0.9, 0, 0, 1},
			{1, 0, 0, 1},
			{1, 0.1, 0, 1},
			{1, 0.2, 0, 1},
			{1, 0.3, 0, 1},
			{1, 0.4, 0, 1},
			{1, 0.5, 0, 1},
			{1, 0.6, 0, 1},
			{1, 0.7, 0, 1},
			{1, 0.8, 0, 1},
			{1, 0.9, 0, 1},
			{1, 1, 0, 1},
			{1, 1, 0.2, 1},
			{1, 1, 0.4, 1},
			{1, 1, 0.6, 1},
			{1, 1, 0.8, 1},
			{1, 1, 1, 1},
		},
	}
}
