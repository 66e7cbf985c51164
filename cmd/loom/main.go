package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"loom/pkg/app"
	"loom/pkg/inspect"
	"loom/pkg/render"
	"loom/pkg/text"
)

func main() {
	output := flag.String("o", "", "PNG output path (overrides the config)")
	dump := flag.Bool("dump", false, "print the element hierarchy with layout results")
	frames := flag.Int("frames", 0, "number of frames to run (overrides the config)")
	verbose := flag.Bool("v", false, "log binding failures to stderr")
	compare := flag.String("compare", "", "reference PNG the rendered frame must match")
	tolerance := flag.Int("tolerance", 2, "per-channel tolerance for -compare")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <loom.yaml>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	o := options{output: *output, frames: *frames, dump: *dump, verbose: *verbose, compare: *compare, tolerance: *tolerance}
	if err := run(flag.Arg(0), o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	output    string
	frames    int
	dump      bool
	verbose   bool
	compare   string
	tolerance int
}

func run(path string, o options) error {
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return err
	}
	output, frames := o.output, o.frames
	if output == "" {
		output = cfg.Path(cfg.Output)
	}
	if frames <= 0 {
		frames = cfg.Frames
	}

	m := text.NewMeasurer()
	if cfg.Font != "" {
		if m, err = text.LoadMeasurer(cfg.Path(cfg.Font)); err != nil {
			return err
		}
	}
	opts := []app.Option{app.WithTextMeasurer(m)}
	if o.verbose {
		opts = append(opts, app.WithLogger(log.New(os.Stderr, "loom: ", 0)))
	}
	a, err := cfg.Open(opts...)
	if err != nil {
		return err
	}

	failures := 0
	for f := 1; f <= frames; f++ {
		failures += a.Update(f)
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d binding failures\n", failures)
	}

	if o.dump {
		if err := inspect.Fprint(os.Stdout, a.View(), a.Layout()); err != nil {
			return err
		}
	}
	if output == "" && o.compare == "" {
		return nil
	}
	r := render.NewRenderer(int(cfg.Viewport.Width), int(cfg.Viewport.Height), a.Layout(), m)
	r.Render()
	if output != "" {
		if err := r.SavePNG(output); err != nil {
			return err
		}
		fmt.Printf("Rendered %s to %s (%d elements)\n", path, output, a.Layout().Len())
	}
	if o.compare != "" {
		return check(r, o.compare, o.tolerance, output)
	}
	return nil
}

// check compares the frame with a reference and, when they differ and
// there is an output, writes a diff image next to it.
func check(r *render.Renderer, ref string, tolerance int, output string) error {
	d, err := r.CompareFile(ref, render.DiffOptions{Tolerance: tolerance, Radius: 1, Image: output != ""})
	if err != nil {
		return err
	}
	if d.Match {
		fmt.Printf("Matches %s\n", ref)
		return nil
	}
	if d.Image != nil {
		diff := strings.TrimSuffix(output, filepath.Ext(output)) + ".diff.png"
		f, err := os.Create(diff)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, d.Image); err != nil {
			return err
		}
	}
	return fmt.Errorf("%d of %d pixels differ from %s (max difference %d)", d.DifferentPixels, d.TotalPixels, ref, d.MaxDifference)
}
