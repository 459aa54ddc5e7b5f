package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"spckit/app"
	"spckit/internal"
	"spckit/internal/config"
	"spckit/internal/errors"
	"spckit/internal/report"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

// cliOptions are the persistent flags shared by every command.
type cliOptions struct {
	format  string
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "spc",
		Short:         "Statistical process control analyses over CSV and XLSX data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "table", "Output format: table, json, md, html or csv")
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "Optional YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(
		newDescribeCmd(opts),
		newParetoCmd(opts),
		newControlCmd(opts),
		newStratifyCmd(opts),
		newHistogramCmd(opts),
		newCorrelateCmd(opts),
		newDPMOCmd(opts),
		newProfileCmd(opts),
		newIshikawaCmd(opts),
	)
	return rootCmd
}

// newService builds the analysis service from configuration. Logging stays
// at warn unless --verbose is set so that stdout carries only results.
func newService(opts *cliOptions) (*app.AnalysisService, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := internal.NewLogger(level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	return app.NewAnalysisServiceFromConfig(cfg, logger)
}

// emit writes result as JSON or doc in the requested format.
func emit(w io.Writer, format string, result interface{}, doc *report.Document) error {
	switch strings.ToLower(format) {
	case "table", "":
		return writeTables(w, doc)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		f, err := report.ParseFormat(format)
		if err != nil {
			return err
		}
		body, err := report.Render(doc, f)
		if err != nil {
			return err
		}
		_, err = w.Write(body)
		return err
	}
}

// writeTables prints the document as plain text with ASCII tables.
func writeTables(w io.Writer, doc *report.Document) error {
	fmt.Fprintln(w, doc.Title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(doc.Title))))
	for _, s := range doc.Sections {
		fmt.Fprintf(w, "\n%s\n", s.Heading)
		for _, p := range s.Paragraphs {
			fmt.Fprintln(w, p)
		}
		if s.Table == nil || len(s.Table.Header) == 0 {
			continue
		}
		tw := tablewriter.NewWriter(w)
		tw.SetHeader(s.Table.Header)
		tw.SetAutoWrapText(false)
		tw.SetAutoFormatHeaders(false)
		tw.AppendBulk(s.Table.Rows)
		tw.Render()
	}
	return nil
}

func writeChart(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create chart file %s", path)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
