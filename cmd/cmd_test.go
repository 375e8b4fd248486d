package cmd

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/krau/konaclassify/config"
	"github.com/krau/konaclassify/service"
)

type stubModel struct{ scores service.ScoreVector }

func (m *stubModel) Infer(*service.Tensor) (service.ScoreVector, error) { return m.scores, nil }
func (m *stubModel) Classes() int                                       { return len(m.scores) }
func (m *stubModel) Close() error                                       { return nil }

type stubEngine struct {
	definition, weights string
	err                 error
}

func (e *stubEngine) Load(definition, weights string) (service.Model, error) {
	e.definition, e.weights = definition, weights
	if e.err != nil {
		return nil, e.err
	}
	return &stubModel{scores: service.ScoreVector{0.2, 0.9}}, nil
}

func writeLabels(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synset_words.txt")
	data := "n01440764 tench, Tinca tinca\nn01443537 goldfish, Carassius auratus\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadClassifier(t *testing.T) {
	cfg := config.Default()
	cfg.ModelDir = "/models"
	cfg.WeightsFileName = "model.onnx.data"
	engine := &stubEngine{}

	c, _, err := loadClassifier(engine, cfg, modelFiles{labels: writeLabels(t)})
	if err != nil {
		t.Fatal(err)
	}
	if engine.definition != filepath.Join("/models", "model.onnx") || engine.weights != filepath.Join("/models", "model.onnx.data") {
		t.Errorf("engine got %q, %q", engine.definition, engine.weights)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	res, err := c.Classify(img, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].Label != "goldfish" {
		t.Errorf("top = %q", res[0].Label)
	}

	engine = &stubEngine{}
	if _, _, err := loadClassifier(engine, cfg, modelFiles{definition: "a.onnx", weights: "b.data", labels: writeLabels(t)}); err != nil {
		t.Fatal(err)
	}
	if engine.definition != "a.onnx" || engine.weights != "b.data" {
		t.Errorf("flags not preferred: %q, %q", engine.definition, engine.weights)
	}
}

func TestLoadClassifierErrors(t *testing.T) {
	cfg := config.Default()
	engine := &stubEngine{}
	if _, _, err := loadClassifier(engine, cfg, modelFiles{labels: filepath.Join(t.TempDir(), "none.txt")}); err == nil {
		t.Fatal("expected error for missing labels")
	}
	if engine.definition != "" {
		t.Error("model should not load when labels fail")
	}

	engine = &stubEngine{err: service.ErrModelLoad}
	if _, _, err := loadClassifier(engine, cfg, modelFiles{labels: writeLabels(t)}); !errors.Is(err, service.ErrModelLoad) {
		t.Fatalf("err = %v, want ErrModelLoad", err)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLabelsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"labels", writeLabels(t)})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "2 labels") || !strings.Contains(s, "   0  tench") || !strings.Contains(s, "   1  goldfish") {
		t.Errorf("output:\n%s", s)
	}
}

func TestModelFlagAliases(t *testing.T) {
	tests := []struct {
		args []string
		want modelFiles
	}{
		{[]string{"--definition", "a.onnx", "--weights", "a.data"}, modelFiles{definition: "a.onnx", weights: "a.data"}},
		{[]string{"--prototxt", "b.onnx", "--model", "b.data"}, modelFiles{definition: "b.onnx", weights: "b.data"}},
		{[]string{"-p", "c.onnx", "-m", "c.data", "-l", "words.txt"}, modelFiles{definition: "c.onnx", weights: "c.data", labels: "words.txt"}},
	}
	for _, tt := range tests {
		var files modelFiles
		cmd := &cobra.Command{Use: "test"}
		addModelFlags(cmd, &files)
		if err := cmd.ParseFlags(tt.args); err != nil {
			t.Fatalf("ParseFlags(%q): %v", tt.args, err)
		}
		if files != tt.want {
			t.Errorf("ParseFlags(%q) = %+v, want %+v", tt.args, files, tt.want)
		}
	}
}

func TestFingerprintFollowsLabels(t *testing.T) {
	cfg := config.Default()
	files := modelFiles{definition: writeLabels(t)}
	fish, err := service.LoadLabelsFile(writeLabels(t))
	if err != nil {
		t.Fatal(err)
	}
	a, err := fingerprint(cfg, files, fish)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fingerprint(cfg, files, service.NewLabelCatalog([]string{"cat", "dog"}))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("different labels share a fingerprint")
	}
	cfg.Mean = [3]float32{}
	if c, _ := fingerprint(cfg, files, fish); c == a {
		t.Error("different means share a fingerprint")
	}
}
