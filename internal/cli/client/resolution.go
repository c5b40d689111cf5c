package client

import (
	"errors"
	"fmt"

	"github.com/cloo-solutions/fingertips/internal/display"
	"github.com/spf13/cobra"
)

// ResolutionCmd creates the resolution command.
func ResolutionCmd() *cobra.Command {
	var outputFile string
	var tool string

	cmd := &cobra.Command{
		Use:   "resolution",
		Short: "Capture the screen resolution",
		Long:  "Runs the display query tool and writes every WIDTHxHEIGHT it reports to a file, one per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolution(cmd, tool, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output-file", "o", display.DefaultOutputFile, "File to write resolutions to")
	cmd.Flags().StringVar(&tool, "tool", display.DefaultTool, "Display query tool to run")

	return cmd
}

func runResolution(cmd *cobra.Command, tool, outputFile string) error {
	capturer := display.NewCapturer(tool)

	resolutions, err := capturer.CaptureToFile(cmd.Context(), outputFile)
	if err != nil {
		cmd.SilenceUsage = true
		if errors.Is(err, display.ErrToolNotFound) {
			cmd.SilenceErrors = true
			return fmt.Errorf("required tool %q not found on PATH", capturer.Tool())
		}
		return err
	}

	fmt.Printf("Wrote %d resolution(s) to %s\n", len(resolutions), outputFile)
	return nil
}
