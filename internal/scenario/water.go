package scenario

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// WaterTile is a square procedural color bitmap for the water background.
// Pixels are stored row-major, length SizePx*SizePx.
type WaterTile struct {
	SizePx int
	Pixels []RGB
}

// GenerateWaterTile renders a tileable water texture from seeded gradient
// noise sampled at two frequencies and blended. Tileability comes from
// sampling 4D noise on a torus, so opposite tile edges line up exactly.
// Only the renderer consumes this; it shares the seeding discipline of
// Generate so the same seed always paints the same water.
func GenerateWaterTile(ws WaterSettings, seed string) *WaterTile {
	size := ws.TileSizePx
	if size <= 0 {
		size = defaultWaterSettings().TileSizePx
	}
	noise := opensimplex.NewNormalized(hashSeed(seed + "-water"))

	base := ws.NoiseScale
	if base <= 0 {
		base = defaultWaterSettings().NoiseScale
	}
	detail := ws.DetailScale
	if detail <= 0 {
		detail = defaultWaterSettings().DetailScale
	}
	strength := math.Min(math.Max(ws.TextureStrength, 0), 1)

	tile := &WaterTile{SizePx: size, Pixels: make([]RGB, size*size)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := float64(x) / float64(size) * 2 * math.Pi
			v := float64(y) / float64(size) * 2 * math.Pi
			low := torusNoise(noise, u, v, base)
			high := torusNoise(noise, u, v, detail)
			t := (0.7*low + 0.3*high) * strength
			tile.Pixels[y*size+x] = lerpRGB(ws.ColorDeep, ws.ColorShallow, t)
		}
	}
	return tile
}

// torusNoise samples 2D-looking noise on a torus embedded in 4D so the
// result wraps seamlessly in both axes.
func torusNoise(n opensimplex.Noise, u, v, freq float64) float64 {
	return n.Eval4(
		freq*math.Cos(u), freq*math.Sin(u),
		freq*math.Cos(v), freq*math.Sin(v),
	)
}

func lerpRGB(a, b RGB, t float64) RGB {
	t = math.Min(math.Max(t, 0), 1)
	return RGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}
