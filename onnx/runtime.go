package onnx

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/krau/konaclassify/config"
	ort "github.com/yalue/onnxruntime_go"
)

// LibPathEnv overrides the ONNX Runtime shared library location.
const LibPathEnv = "ONNXRUNTIME_LIB_PATH"

var (
	pathOnce sync.Once
	libPath  string

	envMu sync.Mutex
)

func LibPath() string {
	pathOnce.Do(func() {
		libPath = resolveLibPath(config.C().Libonnx, os.Getenv(LibPathEnv), runtime.GOOS)
		if libPath == "" {
			slog.Error("ONNX Runtime library path could not be determined for this OS")
		} else {
			slog.Info("Using ONNX Runtime library", slog.String("path", libPath))
		}
	})
	return libPath
}

func resolveLibPath(configured, env, goos string) string {
	if configured != "" {
		return configured
	}
	if env != "" {
		return env
	}
	switch goos {
	case "linux":
		for _, p := range []string{
			"onnxlibs/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
		} {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
		return "libonnxruntime.so"
	case "darwin":
		return "/usr/local/lib/libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return ""
	}
}

// Init loads the shared library and creates the process-wide ORT environment.
// It is a no-op when the environment already exists.
func Init(path string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if path == "" {
		return fmt.Errorf("ONNX Runtime library path is empty")
	}
	ort.SetSharedLibraryPath(path)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
	}
	return nil
}

func Shutdown() {
	envMu.Lock()
	defer envMu.Unlock()
	if !ort.IsInitialized() {
		return
	}
	if err := ort.DestroyEnvironment(); err != nil {
		slog.Error("Failed to destroy ONNX Runtime environment", slog.String("error", err.Error()))
	}
}
