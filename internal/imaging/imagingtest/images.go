// Package imagingtest generates in-memory images for tests.
package imagingtest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
)

// NoisyPNG returns a PNG of random pixels. Noise does not compress, so the file is
// well above any minimum byte size for realistic dimensions.
func NoisyPNG(width, height int) []byte {
	rng := rand.New(rand.NewSource(int64(width*31 + height)))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return encode(img)
}

// FlatPNG returns a single-colour PNG, which compresses to a few hundred bytes.
func FlatPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return encode(img)
}

func encode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
