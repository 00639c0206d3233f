package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/mjettp/visual-system-simulator/devices"
	"github.com/mjettp/visual-system-simulator/glfwcontext"
	"github.com/mjettp/visual-system-simulator/options"
	"github.com/mjettp/visual-system-simulator/passes/lens"
	"github.com/mjettp/visual-system-simulator/pipeline"
)

func init() {
	runtime.LockOSThread()
}

func resolveFrameSource(opts *options.Options) (devices.FrameSource, error) {
	if *opts.Input == "" {
		log.Println("No input given, using the animated test pattern.")
		return devices.NewPatternSource(*opts.Width, *opts.Height, true), nil
	}
	return devices.NewVideoSource(*opts.Input, *opts.DepthInput, *opts.Width, *opts.Height)
}

func main() {
	opts := &options.Options{
		Input:      flag.String("input", "", "Video input (file or camera URL); empty shows a test pattern"),
		DepthInput: flag.String("depth", "", "Optional gray8 depth stream matching the input"),
		Width:      flag.Int("width", 1280, "Source frame width"),
		Height:     flag.Int("height", 720, "Source frame height"),
		Stereo:     flag.Bool("stereo", false, "Render side-by-side stereo for a head-mounted display"),
		ParamsFile: flag.String("params", "params.json", "Simulation parameter file (JSON, watched for changes)"),
	}
	flag.Parse()

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(*opts.Width, *opts.Height, "visual system simulator")
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer ctx.Shutdown()

	frames, err := resolveFrameSource(opts)
	if err != nil {
		log.Fatalf("Failed to open frame source: %v", err)
	}

	device := devices.NewWindowDevice(ctx, frames, *opts.Stereo)
	defer device.Destroy()

	params, err := options.LoadValueMap(*opts.ParamsFile)
	if err != nil {
		log.Printf("No simulation parameters loaded (%v), starting pass-through", err)
		params = pipeline.ValueMap{}
	}
	device.SetParams(params)

	watcher, err := options.WatchValueMap(*opts.ParamsFile, device.SetParams)
	if err != nil {
		log.Printf("Parameter file watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	lensPass, err := lens.New()
	if err != nil {
		log.Fatalf("Failed to create lens pass: %v", err)
	}

	pipe, err := pipeline.NewPipeline([]pipeline.Pass{lensPass}, *opts.Width, *opts.Height)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	defer pipe.Destroy()

	log.Println("Starting render loop...")
	if err := pipe.Run(device); err != nil {
		log.Fatalf("Render loop failed: %v", err)
	}
}
