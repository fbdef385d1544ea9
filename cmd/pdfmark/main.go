// Command pdfmark marks up a PDF file with a document-analysis result.
//
// Usage:
//
//	pdfmark [flags] input.pdf analysis.json output.pdf
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfmark"
)

var (
	units    = flag.String("units", "auto", "Polygon coordinate units: auto, inch, or normalized")
	logLevel = flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] input.pdf analysis.json output.pdf\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Configure logging
	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}
	inputPDF := flag.Arg(0)
	inputJSON := flag.Arg(1)
	outputPDF := flag.Arg(2)

	unit, err := parseUnits(*units)
	if err != nil {
		logger.Fatal(err)
	}

	logger.Infof("Processing document: %s", inputPDF)
	warnings, err := pdfmark.Open(inputPDF).
		AnalysisFile(inputJSON).
		Units(unit).
		Logger(logger).
		WriteFile(outputPDF)
	for _, w := range warnings {
		logger.Warn(w.String())
	}
	if err != nil {
		logger.Fatalf("Error processing document: %v", err)
	}
	logger.Infof("Successfully saved marked-up PDF to: %s", outputPDF)
}

func parseUnits(s string) (pdfmark.Unit, error) {
	switch s {
	case "auto":
		return pdfmark.UnitAuto, nil
	case "inch":
		return pdfmark.UnitInch, nil
	case "normalized":
		return pdfmark.UnitNormalized, nil
	default:
		return pdfmark.UnitAuto, fmt.Errorf("unknown units %q (want auto, inch, or normalized)", s)
	}
}
