package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krau/konaclassify/config"
	"github.com/krau/konaclassify/service"
)

var labelsCmd = &cobra.Command{
	Use:   "labels [file]",
	Short: "List the label catalog in class-index order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.C().LabelsPath()
		if len(args) == 1 {
			path = args[0]
		}
		catalog, err := service.LoadLabelsFile(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d labels", catalog.Len())))
		for i, name := range catalog.Labels() {
			fmt.Fprintf(out, "%4d  %s\n", i, name)
		}
		return nil
	},
}
