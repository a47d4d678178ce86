// =============================================================================
// Payroll Bank Splitter - Bank/Branch Resolver
// =============================================================================
//
// This module maps an IBAN to the receiver identifier (BIC) of the bank that
// should receive the payment.
//
// IBAN LAYOUT (Iraqi IBAN, 23 characters):
//
//   | 0-1     | 2-3          | 4-7       | 8-10        | 11-22          |
//   |---------|--------------|-----------|-------------|----------------|
//   | Country | Check digits | Bank code | Branch code | Account number |
//   | IQ      | 26           | NBIQ      | 856         | 001234567890   |
//
// RESOLUTION RULES:
//   1. The bank code must belong to the known bank set, otherwise the record
//      is not routable and is left out of the output.
//   2. Banks with dynamic branches build a candidate identifier from their
//      branch prefix plus the branch code. The candidate is used only when it
//      is a registered branch.
//   3. Every other case resolves to the bank's default identifier.
//
// =============================================================================

package resolver

import (
	"sort"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
)

// IBAN offsets used for routing.
const (
	bankCodeStart   = 4
	bankCodeEnd     = 8
	branchCodeStart = 8
	branchCodeEnd   = 11
)

// UnknownBankCode is reported for display names that match no bank.
const UnknownBankCode = "Unknown"

// =============================================================================
// BANK DESCRIPTORS
// =============================================================================

// Bank describes one routable bank.
type Bank struct {
	Code            string
	DefaultBIC      string
	DisplayName     string
	DynamicBranches bool
	BranchPrefix    string
}

// Registry is the closed set of routable banks and registered branches.
// It is read-only after construction.
type Registry struct {
	banks    map[string]Bank
	byName   map[string]string
	branches map[string]struct{}
}

// New builds a Registry from configuration.
func New(banks []config.BankConfig, branches []string) *Registry {
	r := &Registry{
		banks:    make(map[string]Bank, len(banks)),
		byName:   make(map[string]string, len(banks)),
		branches: make(map[string]struct{}, len(branches)),
	}

	for _, b := range banks {
		r.banks[b.Code] = Bank{
			Code:            b.Code,
			DefaultBIC:      b.DefaultBIC,
			DisplayName:     b.DisplayName,
			DynamicBranches: b.DynamicBranches,
			BranchPrefix:    b.BranchPrefix,
		}
		r.byName[b.DisplayName] = b.Code
	}

	for _, bic := range branches {
		r.branches[bic] = struct{}{}
	}

	return r
}

// FromConfig builds a Registry from the full application configuration.
func FromConfig(cfg *config.Config) *Registry {
	return New(cfg.Banks, cfg.Branches)
}

// =============================================================================
// LOOKUPS
// =============================================================================

// CodeForName recovers a bank code from its display name.
// UnknownBankCode is returned for names that match no bank.
func (r *Registry) CodeForName(displayName string) string {
	if code, ok := r.byName[displayName]; ok {
		return code
	}
	return UnknownBankCode
}

// DisplayNameForBIC returns the display name of the bank owning a receiver
// identifier. The first four characters of a BIC are the bank code.
func (r *Registry) DisplayNameForBIC(bic string) string {
	if b, ok := r.banks[substr(bic, 0, 4)]; ok {
		return b.DisplayName
	}
	return "UnknownBank"
}

// IsBranch reports whether a receiver identifier is registered.
func (r *Registry) IsBranch(bic string) bool {
	_, ok := r.branches[bic]
	return ok
}

// Banks returns every bank sorted by code.
func (r *Registry) Banks() []Bank {
	out := make([]Bank, 0, len(r.banks))
	for _, b := range r.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// =============================================================================
// RESOLUTION
// =============================================================================

// BankCode extracts the bank code from an IBAN.
// Short IBANs yield a short (and therefore unknown) code.
func BankCode(iban string) string {
	return substr(iban, bankCodeStart, bankCodeEnd)
}

// Route resolves an IBAN in one step.
//
// RETURNS:
//   - The bank code.
//   - The receiver identifier.
//   - false when the bank code is not routable.
func (r *Registry) Route(iban string) (code, bic string, ok bool) {
	code = BankCode(iban)
	if _, known := r.banks[code]; !known {
		return code, "", false
	}
	return code, r.Resolve(code, iban), true
}

// Resolve returns the receiver identifier for a known bank code.
//
// Resolve is total: a malformed IBAN or an unregistered branch resolves to the
// bank's default identifier. An unknown code resolves to the empty string.
func (r *Registry) Resolve(code, iban string) string {
	bank, ok := r.banks[code]
	if !ok {
		return ""
	}

	if !bank.DynamicBranches {
		return bank.DefaultBIC
	}

	branch := substr(iban, branchCodeStart, branchCodeEnd)
	if len(branch) != branchCodeEnd-branchCodeStart {
		return bank.DefaultBIC
	}

	candidate := bank.BranchPrefix + branch
	if r.IsBranch(candidate) {
		return candidate
	}

	return bank.DefaultBIC
}

// substr returns s[start:end] clamped to the string length.
func substr(s string, start, end int) string {
	if start >= len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
