package service

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

type PreprocessOptions struct {
	Width  int
	Height int
	// Mean is subtracted from the B, G and R channels respectively.
	Mean [Channels]float32
}

var DefaultPreprocessOptions = PreprocessOptions{
	Width:  ImageSize,
	Height: ImageSize,
	Mean:   ChannelMeans,
}

// Preprocess resizes img to the target size without preserving aspect ratio
// and lays it out as a 1x3xHxW BGR blob with the channel means subtracted.
// Intensities stay in 0..255; no scale factor is applied.
func Preprocess(img image.Image, opts PreprocessOptions) (*Tensor, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEmptyImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.Width, opts.Height)
	}

	w, h := opts.Width, opts.Height
	resized := imaging.Resize(img, w, h, imaging.Linear)

	plane := w * h
	out := make([]float32, Channels*plane)
	bBase, gBase, rBase := 0, plane, 2*plane
	for y := range h {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+w*4]
		for x := range w {
			i := y*w + x
			px := row[x*4 : x*4+4]
			out[bBase+i] = float32(px[2]) - opts.Mean[0]
			out[gBase+i] = float32(px[1]) - opts.Mean[1]
			out[rBase+i] = float32(px[0]) - opts.Mean[2]
		}
	}

	return &Tensor{
		Shape: []int64{1, Channels, int64(h), int64(w)},
		Data:  out,
	}, nil
}
