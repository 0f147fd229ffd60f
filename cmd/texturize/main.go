package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/himbeles/texturize/internal/highpass"
	"github.com/himbeles/texturize/internal/pipeline"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		cutoff  float64
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "texturize IMAGE_PATH OUTPUT_PATH",
		Short: "Apply a high-pass filter to an image",
		Long: `Subtracts a Gaussian-blurred copy of the image and re-adds the
per-channel mean, removing large-scale brightness variation while keeping
texture. Bit depth, colour mode and the embedded ICC profile are preserved.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(stderr, verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pipeline.Run(pipeline.Options{
				InputPath:      args[0],
				OutputPath:     args[1],
				CutoffDistance: cutoff,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "High-pass filtered image %s saved to: %s\n", res.ShapeString(), res.OutputPath)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().Float64Var(&cutoff, "cutoff-distance", highpass.DefaultCutoffDistance,
		"Gaussian sigma in pixels; larger values keep coarser detail")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")

	cmd.AddCommand(newIdentifyCmd(stdout))
	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
