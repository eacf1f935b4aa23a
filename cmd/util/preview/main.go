// Command preview renders an image the way a display will show it and writes
// the result as a PNG.
//
// Usage:
//
//	preview [-display ESP32|RGB320x240] [-crop x,y,w,h] [-canvas WxH] [-server URL] <input> <output.png>
//
// With -canvas the crop is given in the coordinates of a canvas of that size
// showing the letterboxed image, as the studio draws it. With -server the
// conversion runs on a Glint server instead of locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dixieflatline76/Glint/pkg/client"
	"github.com/dixieflatline76/Glint/pkg/codec"
	"github.com/dixieflatline76/Glint/pkg/crop"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type options struct {
	display codec.DisplayFormat
	crop    *crop.Rect
	canvas  *crop.Size
	server  string
	input   string
	output  string
}

func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	display := fs.String("display", string(codec.ESP32), "target display")
	cropArg := fs.String("crop", "", "crop rectangle x,y,w,h")
	canvasArg := fs.String("canvas", "", "canvas size WxH the crop is drawn on")
	server := fs.String("server", "", "Glint server URL to convert on")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 2 {
		return options{}, errors.New("usage: preview [flags] <input> <output.png>")
	}

	var opts options
	var err error
	if opts.display, err = codec.ParseDisplayFormat(*display); err != nil {
		return options{}, err
	}
	if *cropArg != "" {
		r, err := parseRect(*cropArg)
		if err != nil {
			return options{}, err
		}
		opts.crop = &r
	}
	if *canvasArg != "" {
		if opts.crop == nil {
			return options{}, errors.New("-canvas needs -crop")
		}
		s, err := parseSize(*canvasArg)
		if err != nil {
			return options{}, err
		}
		opts.canvas = &s
	}
	opts.server = *server
	opts.input, opts.output = fs.Arg(0), fs.Arg(1)
	return opts, nil
}

func parseRect(s string) (crop.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return crop.Rect{}, fmt.Errorf("crop %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return crop.Rect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = f
	}
	return crop.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func parseSize(s string) (crop.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return crop.Size{}, fmt.Errorf("canvas %q: want WxH", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return crop.Size{}, fmt.Errorf("canvas %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return crop.Size{}, fmt.Errorf("canvas %q: %w", s, err)
	}
	size := crop.Size{Width: width, Height: height}
	if !size.Valid() {
		return crop.Size{}, fmt.Errorf("canvas %q: sides must be positive", s)
	}
	return size, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.input)
	if err != nil {
		return err
	}

	if opts.crop != nil {
		r := *opts.crop
		if opts.canvas != nil {
			if r, err = canvasToSource(ctx, data, r, *opts.canvas); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Crop in source pixels: %.1f,%.1f %.1fx%.1f\n", r.X, r.Y, r.Width, r.Height)
		}
		if data, err = codec.Extract(ctx, data, r); err != nil {
			return err
		}
	}

	out, err := convert(ctx, opts, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s preview to %s\n", opts.display, opts.output)
	return nil
}

// canvasToSource maps a crop drawn on a canvas of the given size to the
// pixels of the image in data.
func canvasToSource(ctx context.Context, data []byte, r crop.Rect, canvas crop.Size) (crop.Rect, error) {
	img, _, err := codec.Decode(ctx, data, "")
	if err != nil {
		return crop.Rect{}, err
	}
	src := crop.SizeOf(img)
	vp := crop.ComputeViewport(src, canvas.Width, canvas.Height)
	return crop.MapToSource(r, vp, src)
}

// convert returns the preview of data as a PNG.
func convert(ctx context.Context, opts options, data []byte) ([]byte, error) {
	var payload []byte
	var err error
	switch {
	case opts.server != "":
		c := client.New(opts.server, nil)
		if opts.display.IsRGB() {
			payload, err = c.PreviewRGB(ctx, data)
		} else {
			payload, err = c.Preview(ctx, data)
		}
	case opts.display.IsRGB():
		payload, err = codec.PreviewRGB(ctx, data)
	default:
		payload, err = codec.Preview(ctx, data)
	}
	if err != nil {
		return nil, err
	}

	if !opts.display.IsRGB() {
		return codec.PackedToPNG(payload, codec.MonoWidth, codec.MonoHeight)
	}
	img, _, err := codec.Decode(ctx, payload, "image/jpeg")
	if err != nil {
		return nil, err
	}
	return codec.Encode(ctx, img, "image/png", 0)
}
