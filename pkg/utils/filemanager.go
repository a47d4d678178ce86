// =============================================================================
// Payroll Bank Splitter - File Manager Utility
// =============================================================================
//
// This module moves generated artifacts out of the in-memory store:
//   - Directory management
//   - Writing artifacts to the output directory
//   - Zip bundles of a stage (or of everything)
//   - Run log generation
//
// BUNDLE NAMES:
//   split    -> Processed_Excel_Files_{YYYYMMDD_HHMMSS}.zip
//   summary  -> Summary_Files_{YYYYMMDD_HHMMSS}.zip
//   convert  -> Encrypted_Files_{YYYYMMDD_HHMMSS}.zip
//   all      -> All_Files_{YYYYMMDD_HHMMSS}.zip
//
// =============================================================================

package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// timestampLayout is used in bundle and log file names.
const timestampLayout = "20060102_150405"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager writes artifacts to disk.
type FileManager struct {
	// OutputDir is the directory where artifacts are written.
	OutputDir string

	// FileMode is the permission of written files. Default: 0644
	FileMode os.FileMode
}

// NewFileManager creates a new FileManager for the output directory.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		FileMode:  0o644,
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// ARTIFACT OUTPUT
// =============================================================================

// WriteArtifacts writes every artifact into the output directory.
//
// PARAMETERS:
//   - artifacts: The artifacts to write. Existing files are overwritten.
//
// RETURNS:
//   - The written paths, in artifact order.
//   - An error if the directory or any file cannot be written.
func (fm *FileManager) WriteArtifacts(artifacts []types.Artifact) ([]string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(fm.OutputDir, filepath.Base(a.Name))
		if err := os.WriteFile(path, a.Content, fm.FileMode); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", a.Name, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// WriteBundle zips the artifacts into the output directory.
//
// RETURNS:
//   - The path to the zip file.
//   - An error if the archive cannot be built or written.
func (fm *FileManager) WriteBundle(stage types.Stage, artifacts []types.Artifact, now time.Time) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	data, err := Bundle(artifacts, now)
	if err != nil {
		return "", err
	}

	path := filepath.Join(fm.OutputDir, BundleName(stage, now))
	if err := os.WriteFile(path, data, fm.FileMode); err != nil {
		return "", fmt.Errorf("failed to write bundle: %w", err)
	}
	return path, nil
}

// =============================================================================
// BUNDLING
// =============================================================================

// BundlePrefix returns the archive name prefix for a stage.
// The zero Stage means every stage.
func BundlePrefix(stage types.Stage) string {
	switch stage {
	case types.StageSplit:
		return "Processed_Excel_Files"
	case types.StageSummary:
		return "Summary_Files"
	case types.StageConvert:
		return "Encrypted_Files"
	default:
		return "All_Files"
	}
}

// BundleName returns the archive file name for a stage.
func BundleName(stage types.Stage, now time.Time) string {
	return fmt.Sprintf("%s_%s.zip", BundlePrefix(stage), now.Format(timestampLayout))
}

// Bundle builds a deflated zip archive from the artifacts.
// Entries keep artifact order and carry now as their modification time.
func Bundle(artifacts []types.Artifact, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, a := range artifacts {
		header := &zip.FileHeader{
			Name:     filepath.Base(a.Name),
			Method:   zip.Deflate,
			Modified: now,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to bundle: %w", a.Name, err)
		}
		if _, err := w.Write(a.Content); err != nil {
			return nil, fmt.Errorf("failed to write %s to bundle: %w", a.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// RUN LOG
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID     string
	SessionID string
	InputFile string
	StartTime time.Time
	EndTime   time.Time
	Stages    []StageInfo
	Files     []string
}

// StageInfo is one stage line of the run log.
type StageInfo struct {
	Stage    string
	Files    int
	Warnings []string
	Error    string
}

// GenerateRunID returns a new random run identifier.
func GenerateRunID() string {
	return uuid.New().String()
}

// WriteRunLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//
// RETURNS:
//   - The path to the log file.
//   - An error if writing fails.
func (fm *FileManager) WriteRunLog(summary ProcessingSummary) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("processing_summary_%s.txt", summary.StartTime.Format(timestampLayout)))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create run log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Payroll Bank Splitter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Session ID:     %s\n"+
		"  Input File:     %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n",
		summary.RunID,
		summary.SessionID,
		summary.InputFile,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())

	writer.WriteString("Stages:\n")
	writer.WriteString("--------------------------------------------------------------------------------\n")
	for _, st := range summary.Stages {
		fmt.Fprintf(writer, "  %-8s files: %d\n", st.Stage, st.Files)
		for _, w := range st.Warnings {
			fmt.Fprintf(writer, "           warning: %s\n", w)
		}
		if st.Error != "" {
			fmt.Fprintf(writer, "           error: %s\n", st.Error)
		}
	}

	if len(summary.Files) > 0 {
		writer.WriteString("\nFiles:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Files {
			fmt.Fprintf(writer, "  %s\n", f)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush run log: %w", err)
	}

	return logPath, nil
}
