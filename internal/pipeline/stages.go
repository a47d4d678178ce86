package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/summary"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/textenc"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/xlsxwriter"
)

// =============================================================================
// STAGE 2: SUMMARY
// =============================================================================

// Summary builds the summary report from the split files' metadata.
//
// RETURNS:
//   - The stage report.
//   - ErrEmptyInput when there are no split files, ErrSerialization when the
//     report cannot be rendered. On error the store is left untouched.
func (p *Pipeline) Summary(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	log := p.stageLogger(ctx, types.StageSummary)
	report = &Report{Stage: types.StageSummary.String()}
	defer func() { p.finish(types.StageSummary, report, start, err) }()

	agg, err := summary.Aggregate(p.store.List(types.StageSplit), p.registry)
	if errors.Is(err, summary.ErrNoFiles) {
		report.warn(log, "no split files found; run the split stage first")
		return report, fmt.Errorf("%w: %v", ErrEmptyInput, err)
	}
	if err != nil {
		return report, fmt.Errorf("failed to aggregate summary: %w", err)
	}

	content, err := xlsxwriter.Write(agg.Table(p.cfg.Output.SummarySheetName))
	if err != nil {
		log.Error("failed to render summary", "error", err)
		return report, fmt.Errorf("%w: summary report: %v", ErrSerialization, err)
	}

	name := summary.FileName(p.now())
	p.store.ReplaceStage(types.StageSummary, []types.Artifact{{Name: name, Content: content}})
	p.metrics.AddArtifacts(types.StageSummary.String(), 1)

	report.Files = []string{name}
	log.Info("summary completed",
		"file", name,
		"employees", agg.TotalRows,
		"amount", agg.TotalAmount.StringFixed(2),
	)
	return report, nil
}

// =============================================================================
// STAGE 3: CONVERT
// =============================================================================

// Convert re-encodes every split file into .txt and .csv files with
// identical bytes.
//
// RETURNS:
//   - The stage report.
//   - ErrEmptyInput when there are no split files, ErrSerialization when a
//     file cannot be re-encoded. On error the store is left untouched.
func (p *Pipeline) Convert(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	log := p.stageLogger(ctx, types.StageConvert)
	report = &Report{Stage: types.StageConvert.String()}
	defer func() { p.finish(types.StageConvert, report, start, err) }()

	sources := p.store.List(types.StageSplit)
	if len(sources) == 0 {
		report.warn(log, "no split files found; run the split stage first")
		return report, fmt.Errorf("%w: no split files to convert", ErrEmptyInput)
	}

	artifacts := make([]types.Artifact, 0, 2*len(sources))
	for _, src := range sources {
		encoded, err := p.encoder.Encode(src.Content)
		if err != nil {
			log.Error("failed to re-encode", "file", src.Name, "error", err)
			return report, fmt.Errorf("%w: %s: %v", ErrSerialization, src.Name, err)
		}

		report.TruncatedAmounts += encoded.TruncatedAmounts

		txtName, csvName := textenc.FileNames(src.Name)
		artifacts = append(artifacts,
			types.Artifact{Name: txtName, Content: encoded.Content},
			types.Artifact{Name: csvName, Content: encoded.Content},
		)
		log.Debug("file re-encoded", "file", src.Name, "lines", encoded.Lines)
	}

	p.store.ReplaceStage(types.StageConvert, artifacts)
	p.metrics.AddArtifacts(types.StageConvert.String(), len(artifacts))

	for _, a := range artifacts {
		report.Files = append(report.Files, a.Name)
	}

	if report.TruncatedAmounts > 0 {
		report.warn(log, "%d amounts had a fractional part that was truncated in the text files", report.TruncatedAmounts)
	}

	log.Info("convert completed", "sources", len(sources), "files", len(artifacts))
	return report, nil
}
