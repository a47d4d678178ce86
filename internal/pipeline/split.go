package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/normalizer"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/partition"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/xlsxwriter"
)

// =============================================================================
// STAGE 1: SPLIT
// =============================================================================

// Split turns a raw payroll table into per-bank files.
//
// PARAMETERS:
//   - ctx: Carries the request id for logging.
//   - table: The raw input table.
//
// RETURNS:
//   - The stage report.
//   - ErrSchema if a required column is missing, ErrSerialization if a file
//     cannot be rendered. On error the store is left untouched.
//
// PROCESSING STEPS:
//  1. Normalise rows into employees
//  2. Route every employee to a receiver identifier
//  3. Partition each receiver's records under the row and amount caps
//  4. Render every batch as a workbook
//  5. Replace the split stage (and everything after it) in the store
func (p *Pipeline) Split(ctx context.Context, table *types.RawTable) (report *Report, err error) {
	start := time.Now()
	log := p.stageLogger(ctx, types.StageSplit)
	report = &Report{Stage: types.StageSplit.String()}
	defer func() { p.finish(types.StageSplit, report, start, err) }()

	log.Info("split started", "source", table.Source, "rows", len(table.Rows))

	// =========================================================================
	// STEP 1: NORMALISE
	// =========================================================================

	result, err := p.normalizer.Normalize(table)
	if err != nil {
		var schemaErr *normalizer.SchemaError
		if errors.As(err, &schemaErr) {
			log.Error("input rejected", "missing", strings.Join(schemaErr.Missing, ", "))
			return report, fmt.Errorf("%w: %v", ErrSchema, err)
		}
		return report, fmt.Errorf("failed to normalise input: %w", err)
	}

	report.RowsIn = result.RowsIn
	report.InvalidRows = result.InvalidRows
	report.ZeroSalaryRows = result.ZeroSalaryRows
	report.TruncatedNames = result.TruncatedNames

	p.metrics.AddRowsIngested(result.RowsIn)
	p.metrics.AddRowsDropped(string(normalizer.DropInvalidSalary), countReason(result, normalizer.DropInvalidSalary))
	p.metrics.AddRowsDropped(string(normalizer.DropMissingName), countReason(result, normalizer.DropMissingName))
	p.metrics.AddRowsDropped(string(normalizer.DropMissingIBAN), countReason(result, normalizer.DropMissingIBAN))
	p.metrics.AddRowsDropped(string(normalizer.DropZeroSalary), result.ZeroSalaryRows)

	if result.ZeroSalaryRows > 0 {
		report.warn(log, "%d rows with a zero net salary were dropped", result.ZeroSalaryRows)
	}
	if result.InvalidRows > 0 {
		log.Debug("rows with missing or invalid values dropped", "count", result.InvalidRows)
	}

	// =========================================================================
	// STEP 2: ROUTE
	// =========================================================================

	now := p.now()
	transactions, unroutable := p.route(result.Employees, now)
	report.UnroutableRows = unroutable
	p.metrics.AddRowsDropped("unroutable", unroutable)
	if unroutable > 0 {
		log.Debug("records with unknown bank codes excluded", "count", unroutable)
	}

	// =========================================================================
	// STEP 3: PARTITION
	// =========================================================================

	batches, err := partition.Partition(transactions, partition.Limits{
		MaxRows:   p.cfg.Limits.MaxRowsPerFile,
		MaxAmount: p.cfg.Limits.MaxAmount(),
	})
	if err != nil {
		return report, fmt.Errorf("failed to partition records: %w", err)
	}

	// =========================================================================
	// STEP 4: RENDER
	// =========================================================================

	artifacts := make([]types.Artifact, 0, len(batches))
	names := make(map[string]string, len(batches))
	for _, batch := range batches {
		artifact, err := p.renderBatch(batch, now)
		if err != nil {
			log.Error("failed to render bank file", "receiver", batch.ReceiverBIC, "sequence", batch.Sequence, "error", err)
			return report, err
		}
		if other, dup := names[artifact.Name]; dup {
			log.Error("bank file name collision", "file", artifact.Name, "receivers", []string{other, batch.ReceiverBIC})
			return report, fmt.Errorf("%w: receivers %s and %s both map to %s", ErrSerialization, other, batch.ReceiverBIC, artifact.Name)
		}
		names[artifact.Name] = batch.ReceiverBIC
		artifacts = append(artifacts, artifact)
		log.Debug("bank file created", "file", artifact.Name, "rows", batch.RowCount(), "amount", batch.Total.String())
	}

	// =========================================================================
	// STEP 5: STORE
	// =========================================================================

	p.store.ReplaceStage(types.StageSplit, artifacts)
	p.metrics.AddArtifacts(types.StageSplit.String(), len(artifacts))

	for _, a := range artifacts {
		report.Files = append(report.Files, a.Name)
	}

	if len(artifacts) == 0 {
		report.warn(log, "no routable records; no bank files were created")
	}

	log.Info("split completed", "files", len(artifacts), "employees", len(result.Employees), "unroutable", unroutable)
	return report, nil
}

// route resolves every employee to a receiver. Employees whose bank code
// is unknown are left out and counted.
func (p *Pipeline) route(employees []types.Employee, now time.Time) ([]types.Transaction, int) {
	date := now.Format("20060102")
	remittance := p.Remittance(now)

	transactions := make([]types.Transaction, 0, len(employees))
	unroutable := 0

	for _, e := range employees {
		code, bic, ok := p.registry.Route(e.IBAN)
		if !ok {
			unroutable++
			continue
		}

		transactions = append(transactions, types.Transaction{
			Employee:    e,
			BankCode:    code,
			ReceiverBIC: bic,
			Reference:   date + " " + e.IBAN,
			ValueDate:   date,
			Remittance:  remittance,
		})
	}

	return transactions, unroutable
}

// renderBatch renders one batch and attaches its provenance.
func (p *Pipeline) renderBatch(batch types.Batch, now time.Time) (types.Artifact, error) {
	content, err := xlsxwriter.WriteBatch(batch, p.cfg.Payer, p.cfg.Output.SheetName)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("%w: bank file for %s: %v", ErrSerialization, batch.ReceiverBIC, err)
	}

	bankName := p.registry.DisplayNameForBIC(batch.ReceiverBIC)
	code := ""
	if len(batch.Records) > 0 {
		code = batch.Records[0].BankCode
	}

	return types.Artifact{
		Name:    BankFileName(bankName, batch.Sequence, batch.BranchSuffix(), now),
		Content: content,
		Stage:   types.StageSplit,
		Meta: &types.BatchMeta{
			BankName: bankName,
			BankCode: code,
			Branch:   batch.BranchSuffix(),
			Rows:     batch.RowCount(),
			Amount:   batch.Total.Round(2),
		},
	}, nil
}

// Remittance builds the remittance information for the run month.
func (p *Pipeline) Remittance(now time.Time) string {
	month := now.Month().String()
	if names := p.cfg.Payer.MonthNames; len(names) == 12 {
		month = names[now.Month()-1]
	}

	return strings.NewReplacer(
		"{year}", now.Format("2006"),
		"{month}", month,
	).Replace(p.cfg.Payer.RemittanceTemplate)
}

// BankFileName returns "{bank}_file_{sequence}_{branch}_{YYYYMMDD}.xlsx".
func BankFileName(bankName string, sequence int, branch string, now time.Time) string {
	return fmt.Sprintf("%s_file_%d_%s_%s.xlsx", bankName, sequence, branch, now.Format("20060102"))
}

// countReason counts dropped rows with the given reason.
func countReason(result *normalizer.Result, reason normalizer.DropReason) int {
	n := 0
	for _, d := range result.Dropped {
		if d.Reason == reason {
			n++
		}
	}
	return n
}
