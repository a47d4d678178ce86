package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
)

func newRegistry() *Registry {
	return FromConfig(config.Default())
}

func TestBankCode(t *testing.T) {
	tests := []struct {
		iban string
		want string
	}{
		{"IQ26RAFB002100366585001", "RAFB"},
		{"IQ26NBIQ856001234567890", "NBIQ"},
		{"IQ26NB", "NB"},
		{"IQ2", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BankCode(tt.iban), tt.iban)
	}
}

func TestResolve(t *testing.T) {
	r := newRegistry()

	tests := []struct {
		name string
		code string
		iban string
		want string
	}{
		{"static bank", "RAFB", "IQ26RAFB002100366585001", "RAFBIQB1098"},
		{"static bank ignores branch digits", "RDBA", "IQ26RDBA856100366585001", "RDBAIQB1046"},
		{"registered dynamic branch", "NBIQ", "IQ26NBIQ856001234567890", "NBIQIQBA856"},
		{"second dynamic bank", "AINI", "IQ26AINI009001234567890", "AINIIQBA009"},
		{"unregistered branch falls back", "NBIQ", "IQ26NBIQ111001234567890", "NBIQIQBA830"},
		{"short iban falls back", "NBIQ", "IQ26NBIQ85", "NBIQIQBA830"},
		{"bank code only falls back", "AINI", "IQ26AINI", "AINIIQBA015"},
		{"unknown code", "ZZZZ", "IQ26ZZZZ856001234567890", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.code, tt.iban))
		})
	}
}

func TestRoute(t *testing.T) {
	r := newRegistry()

	code, bic, ok := r.Route("IQ26NBIQ862001234567890")
	assert.True(t, ok)
	assert.Equal(t, "NBIQ", code)
	assert.Equal(t, "NBIQIQBA862", bic)

	code, bic, ok = r.Route("IQ26XXXX862001234567890")
	assert.False(t, ok)
	assert.Equal(t, "XXXX", code)
	assert.Empty(t, bic)

	_, _, ok = r.Route("IQ")
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	r := newRegistry()

	assert.Equal(t, "NBIQ", r.CodeForName("National"))
	assert.Equal(t, UnknownBankCode, r.CodeForName("Nowhere"))
	assert.Equal(t, "AlTaif", r.DisplayNameForBIC("AINIIQBA009"))
	assert.Equal(t, "UnknownBank", r.DisplayNameForBIC("ZZZZIQBA009"))
}

func TestBanksSorted(t *testing.T) {
	banks := newRegistry().Banks()
	codes := make([]string, len(banks))
	for i, b := range banks {
		codes[i] = b.Code
	}
	assert.Equal(t, []string{"AIBI", "AINI", "IDBQ", "NBIQ", "RAFB", "RDBA"}, codes)
}
