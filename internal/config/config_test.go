package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "name", cfg.Input.NameColumn)
	assert.Equal(t, "IBAN", cfg.Input.IBANColumn)
	assert.Equal(t, "net salary", cfg.Input.SalaryColumn)
	assert.Equal(t, 35, cfg.Input.NameMaxLength)
	assert.Equal(t, 4000, cfg.Limits.MaxRowsPerFile)
	assert.Equal(t, "4500000000", cfg.Limits.MaxAmount().String())
	assert.Len(t, cfg.Banks, 6)
	assert.Len(t, cfg.Branches, 17)
	require.NoError(t, cfg.validate())
}

func TestDefault_BranchPrefixes(t *testing.T) {
	cfg := Default()
	for _, bank := range cfg.Banks {
		if bank.DynamicBranches {
			assert.Equal(t, bank.Code+"IQBA", bank.BranchPrefix, bank.Code)
		} else {
			assert.Empty(t, bank.BranchPrefix, bank.Code)
		}
	}
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Limits.MaxRowsPerFile)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
limits:
  max_rows_per_file: 10
  max_amount_per_file: 5000
payer:
  name: Test Payer
input:
  salary_column: salary
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Limits.MaxRowsPerFile)
	assert.Equal(t, "5000", cfg.Limits.MaxAmount().String())
	assert.Equal(t, "Test Payer", cfg.Payer.Name)
	assert.Equal(t, "salary", cfg.Input.SalaryColumn)
	assert.Equal(t, "IBAN", cfg.Input.IBANColumn)
	assert.Equal(t, "IQD", cfg.Payer.Currency)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad amount", "limits:\n  max_amount_per_file: lots\n", "max_amount_per_file"},
		{"negative amount", "limits:\n  max_amount_per_file: \"-1\"\n", "must be positive"},
		{"negative rows", "limits:\n  max_rows_per_file: -3\n", "max_rows_per_file"},
		{"short month list", "payer:\n  month_names: [Jan, Feb]\n", "month_names"},
		{"bad bank code", "banks:\n  - code: RAF\n    default_bic: RAFBIQB1098\n    display_name: R\n", "4 characters"},
		{"bad bic", "banks:\n  - code: RAFB\n    default_bic: RAFB\n    display_name: R\n", "11 characters"},
		{"duplicate bank", "banks:\n  - {code: RAFB, default_bic: RAFBIQB1098, display_name: R}\n  - {code: RAFB, default_bic: RAFBIQB1098, display_name: R}\n", "listed twice"},
		{"duplicate display name", "banks:\n  - {code: RAFB, default_bic: RAFBIQB1098, display_name: Gov}\n  - {code: RDBA, default_bic: RDBAIQB1098, display_name: Gov}\n", "share display_name"},
		{"broken yaml", "limits: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}
