package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/svanichkin/bmpfx/internal/bmp"
	"github.com/svanichkin/bmpfx/internal/raster"
)

type config struct {
	input  string
	output string
	op     string
	blur   raster.BlurOptions
}

func main() {
	logger := log.New()
	logger.SetOutput(os.Stderr)

	if err := newRootCmd(logger).Execute(); err != nil {
		if errors.Is(err, bmp.ErrInvalidSignature) {
			logger.WithError(err).Fatal("Not a bitmap")
		}
		logger.WithError(err).Fatal("bmpfx failed")
	}
}

func newRootCmd(logger *log.Logger) *cobra.Command {
	cfg := config{blur: raster.DefaultBlur}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "bmpfx <input.bmp> <output.bmp> [operation]",
		Short: "Apply a colour filter or box blur to a 24-bit BMP",
		Long: "Reads an uncompressed 24-bit BMP, applies an operation and writes the result.\n" +
			"Operations: " + strings.Join(raster.Operations(), ", ") + ". Without one the image is copied.\n" +
			"Paths ending in .zst are read and written zstd-compressed.",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			cfg.input, cfg.output = args[0], args[1]
			if len(args) == 3 {
				cfg.op = args[2]
			}
			return run(logger, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.blur.WindowWidth, "window-width", cfg.blur.WindowWidth, "blur window width in pixels")
	cmd.Flags().IntVar(&cfg.blur.WindowHeight, "window-height", cfg.blur.WindowHeight, "blur window height in pixels")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log header fields and timings")
	return cmd
}

func run(logger *log.Logger, cfg config) error {
	op, err := raster.ParseOperation(cfg.op, cfg.blur)
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.input)
	if err != nil {
		return err
	}
	data, err := readInput(cfg.input)
	if err != nil {
		return err
	}
	// bmp.Read checks the signature, the pixel format and the geometry.
	in := bytes.NewReader(data)

	img, err := bmp.Read(in)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.input, err)
	}
	h := img.Header
	logger.Info("Valid bitmap")
	logger.WithFields(log.Fields{
		"width":        h.Width,
		"height":       h.Height,
		"bpp":          h.BitsPerPixel,
		"pixel_offset": h.PixelOffset,
		"image_size":   h.ImageSize,
	}).Debug("header")

	start := time.Now()
	img.Pixels, err = op(img.Pixels)
	if err != nil {
		return err
	}
	finish := time.Since(start)

	var buf bmp.WriteBuffer
	if err := bmp.Write(&buf, img); err != nil {
		return fmt.Errorf("%s: %w", cfg.output, err)
	}
	outSize, err := writeOutput(cfg.output, buf.Bytes())
	if err != nil {
		return err
	}

	opName := cfg.op
	if opName == "" {
		opName = "copy"
	}
	logger.Infof("%s (%s) → %s (%s)",
		cfg.input,
		formatSize(info.Size()),
		cfg.output,
		formatSize(outSize),
	)
	logger.WithFields(log.Fields{
		"op":      opName,
		"elapsed": finish,
	}).Info("done")
	return nil
}
