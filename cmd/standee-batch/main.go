// standee-batch runs the face swap + stylization workflow against a ComfyUI
// server for a batch of source photos, all swapped onto one target/style
// reference image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/standeelab/standee/batch"
	"github.com/standeelab/standee/client"
	"github.com/standeelab/standee/config"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Println("  standee-batch -target ref.png -output dir [OPTIONS] source.png [source2.png ...]")
	fmt.Println("  standee-batch -target ref.png -output dir -sources dir [OPTIONS]")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
}

func main() {
	cfg := config.Load()

	server := flag.String("server", cfg.ServerURL, "ComfyUI server URL")
	target := flag.String("target", "", "Target body/style reference image")
	sourcesDir := flag.String("sources", "", "Directory of source face images (alternative to positional files)")
	output := flag.String("output", "outputs", "Output directory")
	strength := flag.Float64("strength", cfg.StyleStrength, "Style transfer strength (0.0-1.0)")
	style := flag.String("style", cfg.Style, "Style descriptor for prompting")
	workers := flag.Int("workers", cfg.Workers, "Number of parallel workers")
	retries := flag.Int("retries", cfg.Retries, "Retry attempts per image")
	gpu := flag.String("gpu", "", "GPU type for cost estimation (auto-detected when empty)")
	estimateOnly := flag.Bool("estimate-only", false, "Print the cost estimate and exit without processing")
	avgSeconds := flag.Float64("avg-seconds", 8.0, "Average seconds per image, for cost estimation")
	flag.Usage = usage
	flag.Parse()

	sources := flag.Args()
	if *sourcesDir != "" {
		entries, err := os.ReadDir(*sourcesDir)
		if err != nil {
			log.Fatalln("Error reading sources directory:", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
				continue
			}
			sources = append(sources, filepath.Join(*sourcesDir, entry.Name()))
		}
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no source images given")
		usage()
		os.Exit(1)
	}

	c := client.NewClient(*server)
	c.SetPollTimeout(cfg.PollTimeout)

	gpuType := *gpu
	if gpuType == "" {
		// best effort: ask the server what it is running on
		if stats, err := c.GetSystemStats(); err == nil && len(stats.Devices) > 0 {
			gpuType = stats.Devices[0].Name
		} else {
			gpuType = "RTX 4090"
		}
	}
	estimate := batch.EstimateCost(len(sources), gpuType, *avgSeconds)
	fmt.Printf("Estimated: %.2f hours on %s at $%.2f/hr -> $%.2f total ($%.4f/image)\n",
		estimate.EstimatedHours, estimate.GPUType, estimate.HourlyRate, estimate.TotalCost, estimate.CostPerImage)
	if *estimateOnly {
		return
	}

	if *target == "" {
		fmt.Fprintln(os.Stderr, "Error: -target is required")
		usage()
		os.Exit(1)
	}

	// live queue telemetry is nice to have but the batch works without it
	monitor := client.NewQueueMonitor(c, client.QueueMonitorCallbacks{
		QueueCountChanged: func(remaining int) {
			log.Printf("Server queue size: %d", remaining)
		},
		ExecutionError: func(promptID, message string) {
			log.Printf("Workflow %s failed on server: %s", promptID, message)
		},
	})
	if err := monitor.Start(); err != nil {
		log.Println("Queue monitor unavailable:", err)
	} else {
		defer monitor.Close()
	}

	bar := progressbar.Default(int64(len(sources)), "face swap")
	processor := batch.NewProcessor(c, batch.Options{
		Workers: *workers,
		Retries: *retries,
		Style:   *style,
	})

	report, err := processor.ProcessBatch(context.Background(), sources, *target, *output, *strength,
		func(completed, total, succeeded, failed int) {
			bar.Set(completed)
		})
	if err != nil {
		log.Fatalln("Batch failed to start:", err)
	}

	fmt.Println("\n=== Batch Processing Complete ===")
	fmt.Printf("Successful: %d\n", len(report.Successful))
	fmt.Printf("Failed: %d\n", len(report.Failed))
	fmt.Printf("Total time: %.2f seconds\n", report.TotalTime.Seconds())
	if len(report.Successful) > 0 {
		fmt.Printf("Average time per image: %.2f seconds\n",
			report.TotalTime.Seconds()/float64(len(sources)))
	}
	for _, f := range report.Failed {
		fmt.Printf("  failed %s: %v\n", f.SourcePath, f.Err)
	}

	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
