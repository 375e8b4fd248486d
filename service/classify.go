package service

import (
	"fmt"
	"image"
	"log/slog"
	"time"
)

// Classifier runs the full pipeline against a model that was loaded once.
type Classifier struct {
	model  Model
	labels *LabelCatalog
	opts   PreprocessOptions
}

func NewClassifier(model Model, labels *LabelCatalog, opts PreprocessOptions) *Classifier {
	if n := model.Classes(); n != labels.Len() {
		slog.Warn("Label catalog does not match model output",
			slog.Int("labels", labels.Len()),
			slog.Int("classes", n))
	}
	return &Classifier{
		model:  model,
		labels: labels,
		opts:   opts,
	}
}

func (c *Classifier) Labels() *LabelCatalog {
	return c.labels
}

// Classify returns the k best classes for img.
func (c *Classifier) Classify(img image.Image, k int) (RankedResult, error) {
	start := time.Now()
	blob, err := Preprocess(img, c.opts)
	if err != nil {
		return nil, err
	}
	prepDone := time.Now()

	scores, err := c.model.Infer(blob)
	if err != nil {
		return nil, err
	}
	inferDone := time.Now()

	result, err := Rank(scores, c.labels, k)
	if err != nil {
		return nil, err
	}

	slog.Debug("Classified image",
		slog.Duration("preprocess", prepDone.Sub(start)),
		slog.Duration("inference", inferDone.Sub(prepDone)),
		slog.Duration("rank", time.Since(inferDone)),
		slog.String("top", result[0].Label))
	return result, nil
}

// ClassifyFile loads the image at path and classifies it.
func (c *Classifier) ClassifyFile(path string, k int) (image.Image, RankedResult, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, nil, err
	}
	result, err := c.Classify(img, k)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, result, nil
}
