// Package render draws the classification caption onto the source image.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Caption placement relative to the top-left corner, and its color.
var (
	CaptionX     = 5.0
	CaptionY     = 25.0
	CaptionColor = color.RGBA{R: 255, A: 255}
)

// Annotate returns a copy of img with text drawn near its top-left corner.
func Annotate(img image.Image, text string) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(CaptionColor)
	dc.DrawString(text, CaptionX, CaptionY)
	return dc.Image()
}

// Save writes img to path; the format follows the file extension.
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}
	return nil
}
