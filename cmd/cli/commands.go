package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"spckit/adapters/chart"
	"spckit/app"
	"spckit/internal/errors"
	"spckit/internal/ishikawa"
	"spckit/internal/report"
)

// loadFile creates the service and loads path as the current dataset.
func loadFile(cmd *cobra.Command, opts *cliOptions, path string) (*app.AnalysisService, error) {
	svc, err := newService(opts)
	if err != nil {
		return nil, err
	}
	if _, err := svc.LoadFile(cmd.Context(), path); err != nil {
		return nil, err
	}
	return svc, nil
}

func newDescribeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE [COLUMN]",
		Short: "List the columns of a dataset, or summarize one numeric column",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				info, err := svc.Current()
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), opts.format, info, report.Dataset(info.Name, info.Rows, info.Columns))
			}
			summary, err := svc.Describe(0, args[1])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, summary, report.Summary(args[1], *summary))
		},
	}
}

func newParetoCmd(opts *cliOptions) *cobra.Command {
	var valueColumn, chartPath string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "pareto FILE CATEGORY",
		Short: "Rank categories by frequency or by the sum of a value column",
		Long: `Rank the categories of a column and flag the "vital few" whose cumulative
share stays within the critical threshold.

Example: spc pareto defects.csv defect_type --value cost --chart pareto.png`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			res, err := svc.Pareto(app.ParetoRequest{CategoryColumn: args[1], ValueColumn: valueColumn, Threshold: threshold})
			if err != nil {
				return err
			}
			if chartPath != "" {
				if err := writeChart(chartPath, func(w io.Writer) error { return chart.Pareto(w, res.Pareto, res.Threshold) }); err != nil {
					return err
				}
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.Pareto(res.Pareto, res.Threshold, res.Interpretation))
		},
	}

	cmd.Flags().StringVar(&valueColumn, "value", "", "Numeric column to sum instead of counting rows")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Critical cumulative percentage (default from configuration)")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a PNG chart to this path")
	return cmd
}

func newControlCmd(opts *cliOptions) *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "control FILE COLUMN",
		Short: "X-bar control chart of a numeric column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			res, err := svc.Control(0, args[1])
			if err != nil {
				return err
			}
			if chartPath != "" {
				if err := writeChart(chartPath, func(w io.Writer) error { return chart.Control(w, res) }); err != nil {
					return err
				}
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.Control(res))
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a PNG chart to this path")
	return cmd
}

func newStratifyCmd(opts *cliOptions) *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "stratify FILE CATEGORY NUMERIC",
		Short: "Summarize a numeric column per category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			res, err := svc.Stratify(0, args[1], args[2])
			if err != nil {
				return err
			}
			if chartPath != "" {
				if err := writeChart(chartPath, func(w io.Writer) error { return chart.Stratification(w, res) }); err != nil {
					return err
				}
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.Stratification(res))
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a PNG chart to this path")
	return cmd
}

func newHistogramCmd(opts *cliOptions) *cobra.Command {
	var chartPath string
	var bins int

	cmd := &cobra.Command{
		Use:   "histogram FILE COLUMN",
		Short: "Descriptive statistics and frequency distribution of a numeric column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			res, err := svc.Histogram(0, args[1], bins)
			if err != nil {
				return err
			}
			if chartPath != "" {
				if err := writeChart(chartPath, func(w io.Writer) error { return chart.Histogram(w, res) }); err != nil {
					return err
				}
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.Histogram(res))
		},
	}

	cmd.Flags().IntVar(&bins, "bins", 0, "Number of bins (0 uses Sturges' rule)")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a PNG chart to this path")
	return cmd
}

func newCorrelateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "correlate FILE X Y",
		Short: "Pearson correlation and least squares fit of two numeric columns",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			res, err := svc.Correlate(0, args[1], args[2])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.Correlation(res))
		},
	}
}

func parseCount(name, s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be an integer, got %q", name, s))
	}
	return n, nil
}

func newDPMOCmd(opts *cliOptions) *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "dpmo DEFECTS UNITS OPPORTUNITIES",
		Short: "Defects per million opportunities and sigma level",
		Long: `Convert defect counts into DPMO, process yield and a sigma level
(including the conventional 1.5 sigma shift).

Example: spc dpmo 12 1000 5`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			defects, err := parseCount("defects", args[0])
			if err != nil {
				return err
			}
			units, err := parseCount("units", args[1])
			if err != nil {
				return err
			}
			opportunities, err := parseCount("opportunities", args[2])
			if err != nil {
				return err
			}

			svc, err := newService(opts)
			if err != nil {
				return err
			}
			res, err := svc.DPMO(defects, units, opportunities)
			if err != nil {
				return err
			}
			if chartPath != "" {
				if err := writeChart(chartPath, func(w io.Writer) error { return chart.DPMO(w, res) }); err != nil {
					return err
				}
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.DPMO(res))
		},
	}

	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a PNG chart to this path")
	return cmd
}

func newProfileCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile FILE",
		Short: "Summarize every numeric column and report missing values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadFile(cmd, opts, args[0])
			if err != nil {
				return err
			}
			info, err := svc.Current()
			if err != nil {
				return err
			}
			res, err := svc.Profile(cmd.Context(), info.Version)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, res, report.Profile(info.Name, res))
		},
	}
}

// diagramFile is the YAML layout read by the ishikawa command:
//
//	effect: Late deliveries
//	causes:
//	  Machines:
//	    - cause: Forklift breakdowns
//	      whys: [No preventive maintenance]
type diagramFile struct {
	Effect string                      `yaml:"effect"`
	Causes map[string][]ishikawa.Cause `yaml:"causes"`
}

func readDiagram(path string) (*ishikawa.Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read diagram %s", path)
	}
	var file diagramFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "parse diagram %s", path))
	}

	byCategory := make(map[ishikawa.Category][]ishikawa.Cause, len(file.Causes))
	for name, causes := range file.Causes {
		cat, err := ishikawa.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		byCategory[cat] = append(byCategory[cat], causes...)
	}

	d := ishikawa.NewDiagram(file.Effect)
	for _, cat := range ishikawa.Categories {
		for _, c := range byCategory[cat] {
			if err := d.AddCause(cat, c.Text, c.Whys...); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func newIshikawaCmd(opts *cliOptions) *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "ishikawa DIAGRAM.yaml",
		Short: "Summarize a cause-and-effect diagram or render it as Graphviz DOT",
		Long: `Read a cause-and-effect diagram from YAML and print its cause summary.
Use --format dot to print a Graphviz graph instead.

Example: spc ishikawa delays.yaml --format dot | dot -Tpng -o delays.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			if strings.EqualFold(opts.format, "dot") {
				out, err := d.DOT()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}

			filter := make([]ishikawa.Category, 0, len(categories))
			for _, name := range categories {
				cat, err := ishikawa.ParseCategory(name)
				if err != nil {
					return err
				}
				filter = append(filter, cat)
			}
			if err := d.Validate(); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts.format, d.Summary(filter...), report.Ishikawa(d, filter...))
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "Only list causes of these categories")
	return cmd
}
