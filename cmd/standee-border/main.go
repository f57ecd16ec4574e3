// standee-border adds a colored border around the subject of transparent PNG
// images, either box-shaped around the subject's bounding rectangle or
// following the subject's silhouette.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/standeelab/standee/border"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Println("  standee-border (-input file.png | -directory dir) -output path [OPTIONS]")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
}

func main() {
	input := flag.String("input", "", "Input PNG file")
	directory := flag.String("directory", "", "Input directory containing PNG files")
	output := flag.String("output", "", "Output file path (single image) or directory (batch)")
	colorHex := flag.String("color", "#FF0000", "Border color in hex format")
	width := flag.Int("width", 2, "Border width in pixels (1-100)")
	mode := flag.String("mode", "silhouette", "Border mode: bbox or silhouette")
	flag.Usage = usage
	flag.Parse()

	if (*input == "") == (*directory == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -input or -directory is required")
		usage()
		os.Exit(1)
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -output is required")
		usage()
		os.Exit(1)
	}

	rgb, err := border.ParseHexColor(*colorHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	spec := border.Spec{
		Color: rgb,
		Width: *width,
		Mode:  border.Mode(*mode),
	}
	if err := spec.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if *input != "" {
		if _, err := os.Stat(*input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: input file not found: %s\n", *input)
			os.Exit(1)
		}
		if err := border.ApplyFile(*input, *output, spec); err != nil {
			var verr *border.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(os.Stderr, "Error:", verr)
			} else {
				fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", *input, err)
			}
			os.Exit(1)
		}
		fmt.Printf("Successfully processed: %s -> %s\n", *input, *output)
		return
	}

	if _, err := os.Stat(*directory); err != nil {
		fmt.Fprintf(os.Stderr, "Error: input directory not found: %s\n", *directory)
		os.Exit(1)
	}

	succeeded, total, err := border.ProcessDirectory(*directory, *output, spec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Completed: %d/%d images processed successfully\n", succeeded, total)
	if succeeded != total {
		os.Exit(1)
	}
}
