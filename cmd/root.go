// Package cmd implements the konaclassify command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krau/konaclassify/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "konaclassify",
	Short: "Classify images with a pre-trained convolutional network",
	Long: `konaclassify runs a single image through a pre-trained network with
ONNX Runtime and reports the top-scoring ImageNet-style labels.

Settings are read from config.toml or config.yaml in the working directory
(or --config) and can be overridden per command with flags.

Examples:
  # Top 5 labels for an image
  konaclassify classify -i beagle.png

  # Use explicit model files and save the annotated image
  konaclassify classify -i beagle.png -d models/googlenet.onnx \
      -w models/googlenet.onnx.data -l models/synset_words.txt -o out.png

  # Serve predictions over HTTP
  konaclassify serve
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return err
		}
		setupLogger(config.C().LogLevel, verbose)
		return nil
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(labelsCmd)
}

func setupLogger(level string, verbose bool) {
	lvl, err := parseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, using info\n", err)
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
