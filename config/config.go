package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Libonnx        string `toml:"libonnx" yaml:"libonnx"`
	IntraOpThreads int    `toml:"intra_op_threads" yaml:"intra_op_threads"`
	LogLevel       string `toml:"log_level" yaml:"log_level"`

	ModelDir        string `toml:"model_dir" yaml:"model_dir"`
	ModelFileName   string `toml:"model_file_name" yaml:"model_file_name"`
	WeightsFileName string `toml:"weights_file_name" yaml:"weights_file_name"`
	LabelsFileName  string `toml:"labels_file_name" yaml:"labels_file_name"`

	TopK        int        `toml:"top_k" yaml:"top_k"`
	InputWidth  int        `toml:"input_width" yaml:"input_width"`
	InputHeight int        `toml:"input_height" yaml:"input_height"`
	Mean        [3]float32 `toml:"mean" yaml:"mean"`

	Token    string `toml:"token" yaml:"token"`
	Host     string `toml:"host" yaml:"host"`
	Port     string `toml:"port" yaml:"port"`
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`
	CacheTTL string `toml:"cache_ttl" yaml:"cache_ttl"`

	MaxUploadMB int `toml:"max_upload_mb" yaml:"max_upload_mb"`
}

func Default() Config {
	return Config{
		LogLevel:        "info",
		ModelDir:        "models",
		ModelFileName:   "model.onnx",
		WeightsFileName: "",
		LabelsFileName:  "synset_words.txt",
		TopK:            5,
		InputWidth:      224,
		InputHeight:     224,
		Mean:            [3]float32{104, 117, 123},
		Host:            "0.0.0.0",
		Port:            "8000",
		MaxUploadMB:     32,
	}
}

var (
	cfg      = Default()
	loadErr  error
	loadOnce sync.Once
)

// Init loads path, or the first of config.toml, config.yaml and config.yml
// found in the working directory when path is empty. Only the first call
// has an effect.
func Init(path string) error {
	loadOnce.Do(func() {
		if path == "" {
			path = findDefault()
		}
		if path == "" {
			return
		}
		cfg, loadErr = Load(path)
	})
	return loadErr
}

func C() Config {
	if err := Init(""); err != nil {
		panic(err)
	}
	return cfg
}

func findDefault() string {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads a TOML or YAML file over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		err = toml.Unmarshal(data, &c)
	}
	if err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return fmt.Errorf("input size must be positive, got %dx%d", c.InputWidth, c.InputHeight)
	}
	if c.ModelFileName == "" {
		return fmt.Errorf("model_file_name is required")
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("max_upload_mb must not be negative, got %d", c.MaxUploadMB)
	}
	if _, err := c.CacheExpiry(); err != nil {
		return err
	}
	return nil
}

// CacheExpiry parses cache_ttl; zero means entries never expire.
func (c Config) CacheExpiry() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_ttl %q: %w", c.CacheTTL, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache_ttl must not be negative, got %s", d)
	}
	return d, nil
}

// UploadLimit is max_upload_mb in bytes; zero leaves the server default.
func (c Config) UploadLimit() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c Config) DefinitionPath() string {
	return filepath.Join(c.ModelDir, c.ModelFileName)
}

// WeightsPath is empty when the definition carries its own weights.
func (c Config) WeightsPath() string {
	if c.WeightsFileName == "" {
		return ""
	}
	return filepath.Join(c.ModelDir, c.WeightsFileName)
}

func (c Config) LabelsPath() string {
	return filepath.Join(c.ModelDir, c.LabelsFileName)
}
