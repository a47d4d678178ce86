// =============================================================================
// Payroll Bank Splitter - Process Command
// =============================================================================
//
// This file implements the 'process' command, which runs the stages against
// one payroll file and writes every artifact to the output directory.
//
// COMMAND USAGE:
//   payroll-splitter process --input <file> [flags]
//
// FLAGS:
//   --input, -i      Payroll file (.xlsx or .csv) (required)
//   --output, -o     Output directory (default from config)
//   --zip            Also write a zip bundle of every artifact
//   --delete-text    Remove the .txt encodings after conversion
//   --skip-summary   Do not build the summary report
//   --skip-convert   Do not build the text encodings
//
// EXAMPLES:
//   payroll-splitter process -i payroll.xlsx
//   payroll-splitter process -i payroll.csv -o ./out --zip
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/pipeline"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/store"
	"github.com/ginjaninja78/payroll-bank-splitter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processOptions holds the flag values of the process command.
type processOptions struct {
	inputFile   string
	outputDir   string
	zip         bool
	deleteText  bool
	skipSummary bool
	skipConvert bool
}

var processOpts processOptions

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Split a payroll file into bank files, a summary and text encodings",
	Long: `Process reads one payroll sheet and runs every stage in order:

  1. Split    one .xlsx file per bank / branch, capped by rows and amount
  2. Summary  one summary workbook with per-bank and grand totals
  3. Convert  pipe-delimited .txt and .csv copies of every bank file

All artifacts are written to the output directory together with a
processing_summary_*.txt run log.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		opts := processOpts
		if opts.outputDir == "" {
			opts.outputDir = appConfig.Output.Dir
		}
		return runProcess(cmd.Context(), cmd.OutOrStdout(), appConfig, opts)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processOpts.inputFile, "input", "i", "", "Payroll file (.xlsx or .csv)")
	processCmd.Flags().StringVarP(&processOpts.outputDir, "output", "o", "", "Output directory (default from config)")
	processCmd.Flags().BoolVar(&processOpts.zip, "zip", false, "Also write a zip bundle of every artifact")
	processCmd.Flags().BoolVar(&processOpts.deleteText, "delete-text", false, "Remove the .txt encodings after conversion")
	processCmd.Flags().BoolVar(&processOpts.skipSummary, "skip-summary", false, "Do not build the summary report")
	processCmd.Flags().BoolVar(&processOpts.skipConvert, "skip-convert", false, "Do not build the text encodings")

	processCmd.MarkFlagRequired("input")
}

// =============================================================================
// PROCESSING
// =============================================================================

// runProcess executes the stages for one input file.
//
// PARAMETERS:
//   - ctx: Context carried into every stage.
//   - out: Where the progress report is printed.
//   - cfg: Application configuration.
//   - opts: Command options. outputDir must be set.
//
// RETURNS:
//   - An error if reading, splitting or writing fails.
//     An empty summary or conversion is reported but not fatal.
func runProcess(ctx context.Context, out io.Writer, cfg *config.Config, opts processOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	st := store.New()
	p := pipeline.New(cfg, st)
	fm := utils.NewFileManager(opts.outputDir)

	runLog := utils.ProcessingSummary{
		RunID:     utils.GenerateRunID(),
		SessionID: st.SessionID(),
		InputFile: opts.inputFile,
		StartTime: startTime,
	}

	fmt.Fprintln(out, "=== Payroll Bank Splitter ===")
	fmt.Fprintf(out, "Input:  %s\n", opts.inputFile)
	fmt.Fprintf(out, "Output: %s\n\n", opts.outputDir)

	slog.Debug("process started", "run_id", runLog.RunID, "input", opts.inputFile)

	table, err := pipeline.ReadFile(opts.inputFile, cfg.Input.Sheet)
	if err != nil {
		return err
	}

	// Later stages tolerate ErrEmptyInput; split does not.
	report, err := p.Split(ctx, table)
	runLog.Stages = append(runLog.Stages, stageInfo(report, err))
	printReport(out, report, err)
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	if !opts.skipSummary {
		report, err = p.Summary(ctx)
		runLog.Stages = append(runLog.Stages, stageInfo(report, err))
		printReport(out, report, err)
		if err != nil && !errors.Is(err, pipeline.ErrEmptyInput) {
			return fmt.Errorf("summary failed: %w", err)
		}
	}

	if !opts.skipConvert {
		report, err = p.Convert(ctx)
		runLog.Stages = append(runLog.Stages, stageInfo(report, err))
		printReport(out, report, err)
		if err != nil && !errors.Is(err, pipeline.ErrEmptyInput) {
			return fmt.Errorf("convert failed: %w", err)
		}

		if opts.deleteText {
			report = p.DeleteText(ctx)
			runLog.Stages = append(runLog.Stages, stageInfo(report, nil))
			printReport(out, report, nil)
		}
	}

	paths, err := fm.WriteArtifacts(st.List(0))
	if err != nil {
		return err
	}
	runLog.Files = paths

	if opts.zip && st.Len() > 0 {
		bundlePath, err := fm.WriteBundle(0, st.List(0), startTime)
		if err != nil {
			return err
		}
		runLog.Files = append(runLog.Files, bundlePath)
	}

	runLog.EndTime = time.Now()
	logPath, err := fm.WriteRunLog(runLog)
	if err != nil {
		slog.Warn("failed to write run log", "error", err)
	}

	fmt.Fprintln(out, "=== Processing Complete ===")
	fmt.Fprintf(out, "Files written: %d\n", len(runLog.Files))
	if logPath != "" {
		fmt.Fprintf(out, "Run log:       %s\n", logPath)
	}
	fmt.Fprintf(out, "Duration:      %s\n", runLog.EndTime.Sub(startTime).Round(time.Millisecond))

	return nil
}

// stageInfo converts a stage report into a run log entry.
func stageInfo(report *pipeline.Report, err error) utils.StageInfo {
	info := utils.StageInfo{}
	if report != nil {
		info.Stage = report.Stage
		info.Files = len(report.Files)
		info.Warnings = report.Warnings
	}
	if err != nil {
		info.Error = err.Error()
	}
	return info
}

// printReport prints one stage report.
func printReport(out io.Writer, report *pipeline.Report, err error) {
	if report == nil {
		return
	}

	fmt.Fprintf(out, "[%s] files: %d\n", report.Stage, len(report.Files))
	for _, name := range report.Files {
		fmt.Fprintf(out, "  + %s\n", name)
	}
	if report.RowsIn > 0 {
		fmt.Fprintf(out, "  rows read: %d, invalid: %d, zero salary: %d, unroutable: %d\n",
			report.RowsIn, report.InvalidRows, report.ZeroSalaryRows, report.UnroutableRows)
	}
	if report.Deleted > 0 {
		fmt.Fprintf(out, "  deleted: %d\n", report.Deleted)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(out, "  error: %v\n", err)
	}
	fmt.Fprintln(out)
}
