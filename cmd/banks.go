package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/resolver"
)

// banksCmd prints the routable banks and their registered branches.
var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List the routable banks and registered branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := resolver.FromConfig(appConfig)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%-6s %-14s %-12s %s\n", "CODE", "DISPLAY NAME", "DEFAULT BIC", "BRANCHES")
		for _, bank := range registry.Banks() {
			branches := "-"
			if bank.DynamicBranches {
				branches = strings.Join(registeredBranches(registry, bank), ", ")
			}
			fmt.Fprintf(out, "%-6s %-14s %-12s %s\n", bank.Code, bank.DisplayName, bank.DefaultBIC, branches)
		}
		return nil
	},
}

// registeredBranches returns the configured branch identifiers of a bank.
func registeredBranches(registry *resolver.Registry, bank resolver.Bank) []string {
	var out []string
	for _, bic := range appConfig.Branches {
		if strings.HasPrefix(bic, bank.BranchPrefix) && registry.IsBranch(bic) {
			out = append(out, bic)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(banksCmd)
}
