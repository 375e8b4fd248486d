package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/krau/konaclassify/service"
	ort "github.com/yalue/onnxruntime_go"
)

// Engine loads ONNX graphs through ONNX Runtime.
type Engine struct {
	// LibPath is the shared library to load; LibPath() is used when empty.
	LibPath        string
	IntraOpThreads int
}

var _ service.Engine = (*Engine)(nil)

// Load opens the network definition. weightsPath names the external
// initializer file the graph references; it must sit next to the definition
// because that is where ONNX Runtime looks for it. An empty weightsPath
// means the definition embeds its weights.
func (e *Engine) Load(definitionPath, weightsPath string) (service.Model, error) {
	if err := checkResources(definitionPath, weightsPath); err != nil {
		return nil, err
	}

	lib := e.LibPath
	if lib == "" {
		lib = LibPath()
	}
	if err := Init(lib); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrModelLoad, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(definitionPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to get model input/output info: %w", service.ErrModelLoad, definitionPath, err)
	}
	if len(inputs) != 1 || len(outputs) < 1 {
		return nil, fmt.Errorf("%w: %s: expected 1 input and at least 1 output, got %d and %d",
			service.ErrModelLoad, definitionPath, len(inputs), len(outputs))
	}
	in, out := inputs[0], outputs[0]
	if in.DataType != ort.TensorElementDataTypeFloat || out.DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("%w: %s: only float32 input and output are supported", service.ErrModelLoad, definitionPath)
	}
	inputShape, err := resolveShape(in.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: input %q: %w", service.ErrModelLoad, definitionPath, in.Name, err)
	}
	if len(inputShape) != 4 || inputShape[1] != service.Channels {
		return nil, fmt.Errorf("%w: %s: input %q must be Nx3xHxW, got %v",
			service.ErrModelLoad, definitionPath, in.Name, inputShape)
	}
	outputShape, err := resolveShape(out.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: output %q: %w", service.ErrModelLoad, definitionPath, out.Name, err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session options: %w", service.ErrModelLoad, err)
	}
	defer opts.Destroy()
	if e.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(e.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("%w: failed to set intra-op threads: %w", service.ErrModelLoad, err)
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input tensor: %w", service.ErrModelLoad, err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("%w: failed to create output tensor: %w", service.ErrModelLoad, err)
	}

	session, err := ort.NewAdvancedSession(
		definitionPath,
		[]string{in.Name},
		[]string{out.Name},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("%w: %s: failed to create ONNX Runtime session: %w", service.ErrModelLoad, definitionPath, err)
	}

	slog.Info("Loaded model",
		slog.String("definition", definitionPath),
		slog.String("weights", weightsPath),
		slog.String("input", in.Name),
		slog.String("output", out.Name),
		slog.Int64("classes", outputShape.FlattenedSize()))

	return &Model{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		inputName:  in.Name,
		outputName: out.Name,
		inputShape: inputShape,
		classes:    int(outputShape.FlattenedSize()),
	}, nil
}

func checkResources(definitionPath, weightsPath string) error {
	if err := checkFile(definitionPath); err != nil {
		return fmt.Errorf("%w: network definition: %w", service.ErrModelLoad, err)
	}
	if weightsPath == "" || weightsPath == definitionPath {
		return nil
	}
	if err := checkFile(weightsPath); err != nil {
		return fmt.Errorf("%w: weights: %w", service.ErrModelLoad, err)
	}
	defDir, err := filepath.Abs(filepath.Dir(definitionPath))
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrModelLoad, err)
	}
	weightsDir, err := filepath.Abs(filepath.Dir(weightsPath))
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrModelLoad, err)
	}
	if defDir != weightsDir {
		return fmt.Errorf("%w: weights %s must be in the same directory as %s",
			service.ErrModelLoad, weightsPath, definitionPath)
	}
	return nil
}

func checkFile(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}

// resolveShape pins dynamic dimensions (batch, usually) to 1.
func resolveShape(dims ort.Shape) (ort.Shape, error) {
	if len(dims) == 0 {
		return nil, errors.New("scalar shape")
	}
	out := slices.Clone(dims)
	for i, d := range out {
		switch {
		case d == -1:
			out[i] = 1
		case d <= 0:
			return nil, fmt.Errorf("invalid dimension %d at axis %d", d, i)
		}
	}
	return out, nil
}

// Model is a loaded ONNX session with preallocated input and output tensors.
type Model struct {
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	inputName  string
	outputName string
	inputShape ort.Shape
	classes    int
}

func (m *Model) Classes() int {
	return m.classes
}

func (m *Model) Infer(t *service.Tensor) (service.ScoreVector, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", service.ErrInference)
	}
	if !slices.Equal(t.Shape, []int64(m.inputShape)) {
		return nil, fmt.Errorf("%w: tensor shape %v does not match input %q shape %v",
			service.ErrInference, t.Shape, m.inputName, []int64(m.inputShape))
	}
	dst := m.input.GetData()
	if len(t.Data) != len(dst) {
		return nil, fmt.Errorf("%w: tensor has %d elements, input %q needs %d",
			service.ErrInference, len(t.Data), m.inputName, len(dst))
	}
	copy(dst, t.Data)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInference, err)
	}

	scores := make(service.ScoreVector, m.classes)
	copy(scores, m.output.GetData())
	return scores, nil
}

func (m *Model) Close() error {
	var errs []error
	if m.session != nil {
		errs = append(errs, m.session.Destroy())
	}
	if m.input != nil {
		errs = append(errs, m.input.Destroy())
	}
	if m.output != nil {
		errs = append(errs, m.output.Destroy())
	}
	return errors.Join(errs...)
}
