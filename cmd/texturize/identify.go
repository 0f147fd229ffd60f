package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/himbeles/texturize/internal/color"
	"github.com/himbeles/texturize/internal/imageio"
	"github.com/himbeles/texturize/internal/jpeg"
	"github.com/himbeles/texturize/internal/png"
)

func newIdentifyCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "identify FILE",
		Short: "Inspect image and ICC profile info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(stdout, args[0])
		},
	}
}

func runIdentify(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	img, err := imageio.Decode(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	format := imageio.Detect(data)

	fmt.Fprintf(w, "File:       %s\n", path)
	fmt.Fprintf(w, "Format:     %s\n", format)
	fmt.Fprintf(w, "Dimensions: %d x %d\n", img.Width, img.Height)
	fmt.Fprintf(w, "Mode:       %s\n", img.ModeName())
	fmt.Fprintf(w, "Shape:      %s\n", img.ShapeString())
	fmt.Fprintf(w, "Sample:     %s\n", img.Kind)
	if img.Palette != nil {
		fmt.Fprintf(w, "Palette:    %d entries\n", len(img.Palette))
	}

	switch format {
	case imageio.FormatJPEG:
		if info, err := jpeg.GetInfo(data); err == nil {
			fmt.Fprintf(w, "Color space: %s (%d components, %d-bit", info.ColorSpace, info.NumComponents, info.Precision)
			if info.Progressive {
				fmt.Fprint(w, ", progressive")
			}
			fmt.Fprintln(w, ")")
		}
	case imageio.FormatPNG:
		if info, err := png.ReadInfo(data); err == nil {
			fmt.Fprintf(w, "PNG:        %s, %d-bit", png.ColorTypeName(info.ColorType), info.BitDepth)
			if info.Interlace != 0 {
				fmt.Fprint(w, ", interlaced")
			}
			fmt.Fprintln(w)
			if info.ICCName != "" {
				fmt.Fprintf(w, "ICC name:   %s\n", info.ICCName)
			}
		}
	}
	fmt.Fprintf(w, "File size:  %d bytes (%.1f MB)\n", len(data), float64(len(data))/(1024*1024))

	if img.ICC == nil {
		fmt.Fprintln(w, "ICC profile: none")
		return nil
	}
	pi, err := color.ParseProfileInfo(img.ICC)
	if err != nil {
		fmt.Fprintf(w, "ICC profile: present (%d bytes) but invalid: %v\n", len(img.ICC), err)
		return nil
	}
	fmt.Fprintf(w, "ICC profile: %d bytes\n", len(img.ICC))
	fmt.Fprintf(w, "  Version:     %s\n", pi.Version)
	fmt.Fprintf(w, "  Color space: %s\n", color.ColorSpaceName(pi.ColorSpace))
	fmt.Fprintf(w, "  PCS:         %s\n", color.ColorSpaceName(pi.PCS))
	fmt.Fprintf(w, "  Class:       %s\n", color.ProfileClassName(pi.Class))
	fmt.Fprintf(w, "  Intent:      %s\n", color.IntentName(pi.Intent))
	if pi.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", pi.Description)
	}
	if !pi.Created.IsZero() {
		fmt.Fprintf(w, "  Created:     %s\n", pi.Created.Format("2006-01-02 15:04:05"))
	}
	if !pi.MatchesMode(img.Mode) {
		fmt.Fprintf(w, "  Warning:     profile does not match mode %s\n", img.ModeName())
	}
	return nil
}
