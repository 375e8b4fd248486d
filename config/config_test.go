package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "config.toml", `
model_dir = "/srv/models"
model_file_name = "googlenet.onnx"
weights_file_name = "googlenet.onnx.data"
top_k = 3
mean = [103.5, 116.25, 123.0]
cache_ttl = "1h"
max_upload_mb = 8
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.TopK != 3 {
		t.Errorf("TopK = %d", c.TopK)
	}
	if c.Mean != [3]float32{103.5, 116.25, 123} {
		t.Errorf("Mean = %v", c.Mean)
	}
	if c.DefinitionPath() != filepath.Join("/srv/models", "googlenet.onnx") {
		t.Errorf("DefinitionPath = %q", c.DefinitionPath())
	}
	if c.WeightsPath() != filepath.Join("/srv/models", "googlenet.onnx.data") {
		t.Errorf("WeightsPath = %q", c.WeightsPath())
	}
	if ttl, _ := c.CacheExpiry(); ttl != time.Hour {
		t.Errorf("CacheExpiry = %v", ttl)
	}
	if c.UploadLimit() != 8<<20 {
		t.Errorf("UploadLimit = %d", c.UploadLimit())
	}
	// Unset fields keep their defaults.
	if c.InputWidth != 224 || c.LabelsFileName != "synset_words.txt" {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "config.yaml", `
libonnx: /usr/lib/libonnxruntime.so
top_k: 10
port: "9000"
log_level: debug
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Libonnx != "/usr/lib/libonnxruntime.so" || c.TopK != 10 || c.Port != "9000" || c.LogLevel != "debug" {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.WeightsPath() != "" {
		t.Errorf("WeightsPath = %q, want empty", c.WeightsPath())
	}
	if c.Mean != [3]float32{104, 117, 123} {
		t.Errorf("Mean = %v", c.Mean)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, file, content, want string
	}{
		{"bad top_k", "c.toml", "top_k = 0", "top_k"},
		{"bad size", "c.yaml", "input_width: -1", "input size"},
		{"bad ttl", "c.toml", `cache_ttl = "soon"`, "cache_ttl"},
		{"bad upload limit", "c.yaml", "max_upload_mb: -1", "max_upload_mb"},
		{"syntax", "c.toml", "top_k = ", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}
