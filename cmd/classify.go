package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/krau/konaclassify/config"
	"github.com/krau/konaclassify/onnx"
	"github.com/krau/konaclassify/render"
	"github.com/krau/konaclassify/service"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	overlayStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
)

var classifyFlags struct {
	image  string
	files  modelFiles
	topK   int
	output string
	json   bool
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single image",
	Long: `Classify a single image and print the top-k labels.

The network definition and weights are taken from the config unless given
with --definition/-d and --weights/-w (also accepted as --prototxt/-p and
--model/-m).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.C()
		k := classifyFlags.topK
		if !cmd.Flags().Changed("top") {
			k = cfg.TopK
		}

		classifier, model, err := loadClassifier(newEngine(cfg), cfg, classifyFlags.files)
		if err != nil {
			return err
		}
		defer onnx.Shutdown()
		defer model.Close()

		img, result, err := classifier.ClassifyFile(classifyFlags.image, k)
		if err != nil {
			return err
		}
		overlay, lines := service.Render(result)

		out := cmd.OutOrStdout()
		if classifyFlags.json {
			if err := writeJSON(out, classifyFlags.image, result, overlay); err != nil {
				return err
			}
		} else {
			printResult(out, lines, overlay)
		}

		if classifyFlags.output != "" {
			if err := render.Save(classifyFlags.output, render.Annotate(img, overlay)); err != nil {
				return err
			}
			slog.Info("Saved annotated image", slog.String("path", classifyFlags.output))
		}
		return nil
	},
}

func init() {
	f := classifyCmd.Flags()
	addModelFlags(classifyCmd, &classifyFlags.files)
	f.StringVarP(&classifyFlags.image, "image", "i", "", "path to input image")
	f.IntVarP(&classifyFlags.topK, "top", "k", 5, "number of labels to report")
	f.StringVarP(&classifyFlags.output, "output", "o", "", "write the annotated image to this path")
	f.BoolVar(&classifyFlags.json, "json", false, "print results as JSON")
	_ = classifyCmd.MarkFlagRequired("image")
}

func printResult(w io.Writer, lines []string, overlay string) {
	fmt.Fprintln(w, titleStyle.Render("Image Classification"))
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w, overlayStyle.Render(overlay))
}

func writeJSON(w io.Writer, image string, result service.RankedResult, overlay string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Image       string               `json:"image"`
		Predictions service.RankedResult `json:"predictions"`
		Overlay     string               `json:"overlay"`
	}{image, result, overlay})
}
