// =============================================================================
// Payroll Bank Splitter - Main Entry Point
// =============================================================================
//
// USAGE:
//   payroll-splitter process   - Run every stage against one payroll file
//   payroll-splitter serve     - Start the HTTP server
//   payroll-splitter banks     - List the routable banks
//   payroll-splitter version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, routing, partitioning, rendering, HTTP
//   - pkg/utils/     : Output directory and bundle helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payroll-bank-splitter/cmd"
)

func main() {
	cmd.Execute()
}
