// Command pdfrender rasterizes one page of a PDF file to a BMP-32
// image, exercising the reader/renderer end to end: Open, the page
// tree, the content-stream interpreter, and the software rasterizer.
package main

import (
	"flag"
	"fmt"
	"os"

	pdf "pdfreader.dev/go/pdfreader"
	"pdfreader.dev/go/pdfreader/graphics"
	"pdfreader.dev/go/pdfreader/internal/raster"
)

func main() {
	dpi := flag.Float64("dpi", 72.0, "resolution for rendering, in pixels per inch")
	pageNum := flag.Int("page", 1, "page number to render (1-based)")
	outputFile := flag.String("output", "", "output BMP file (default: input file with .bmp extension)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.pdf\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputFile := flag.Arg(0)

	out := *outputFile
	if out == "" {
		out = trimExt(inputFile) + ".bmp"
	}

	if err := run(inputFile, out, *pageNum, *dpi); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully rendered page %d of %s to %s\n", *pageNum, inputFile, out)
}

func run(inputFile, outputFile string, pageNum int, dpi float64) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}

	r, err := pdf.Open(data)
	if err != nil {
		return fmt.Errorf("parsing PDF: %w", err)
	}

	pages, err := pdf.Pages(r)
	if err != nil {
		return fmt.Errorf("walking page tree: %w", err)
	}
	if pageNum < 1 || pageNum > len(pages) {
		return fmt.Errorf("page %d out of range (document has %d pages)", pageNum, len(pages))
	}
	page := pages[pageNum-1]

	canvas, err := graphics.RenderPage(r, page, graphics.Options{
		Scale:      dpi / 72.0,
		Background: raster.RGBA{R: 255, G: 255, B: 255, A: 255},
	})
	if err != nil {
		return fmt.Errorf("rendering page %d: %w", pageNum, err)
	}

	if err := os.WriteFile(outputFile, canvas.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func trimExt(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}
