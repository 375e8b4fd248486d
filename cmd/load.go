package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krau/konaclassify/cache"
	"github.com/krau/konaclassify/config"
	"github.com/krau/konaclassify/onnx"
	"github.com/krau/konaclassify/service"
)

// modelFiles names the three resources a classifier is built from.
type modelFiles struct {
	definition string
	weights    string
	labels     string
}

// addModelFlags registers the model file flags on cmd. --prototxt and
// --model are aliases of --definition and --weights.
func addModelFlags(cmd *cobra.Command, files *modelFiles) {
	f := cmd.Flags()
	f.StringVarP(&files.definition, "definition", "d", "", "path to the network definition (.onnx)")
	f.StringVarP(&files.definition, "prototxt", "p", "", "alias of --definition")
	f.StringVarP(&files.weights, "weights", "w", "", "path to the external weights file, if any")
	f.StringVarP(&files.weights, "model", "m", "", "alias of --weights")
	f.StringVarP(&files.labels, "labels", "l", "", "path to the label list (synset words)")
}

func (f modelFiles) withDefaults(cfg config.Config) modelFiles {
	if f.definition == "" {
		f.definition = cfg.DefinitionPath()
	}
	if f.weights == "" {
		f.weights = cfg.WeightsPath()
	}
	if f.labels == "" {
		f.labels = cfg.LabelsPath()
	}
	return f
}

// loadClassifier reads the labels and loads the model once. Callers must
// Close the returned model.
func loadClassifier(engine service.Engine, cfg config.Config, files modelFiles) (*service.Classifier, service.Model, error) {
	files = files.withDefaults(cfg)
	labels, err := service.LoadLabelsFile(files.labels)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read labels: %w", err)
	}
	model, err := engine.Load(files.definition, files.weights)
	if err != nil {
		return nil, nil, err
	}
	return service.NewClassifier(model, labels, preprocessOptions(cfg)), model, nil
}

func preprocessOptions(cfg config.Config) service.PreprocessOptions {
	return service.PreprocessOptions{
		Width:  cfg.InputWidth,
		Height: cfg.InputHeight,
		Mean:   cfg.Mean,
	}
}

// fingerprint keys cached results to the model files, labels and
// preprocessing the classifier was built from.
func fingerprint(cfg config.Config, files modelFiles, labels *service.LabelCatalog) (string, error) {
	files = files.withDefaults(cfg)
	return cache.Fingerprint([]string{files.definition, files.weights}, labels.Labels(), preprocessOptions(cfg))
}

func newEngine(cfg config.Config) service.Engine {
	return &onnx.Engine{
		LibPath:        onnx.LibPath(),
		IntraOpThreads: cfg.IntraOpThreads,
	}
}
