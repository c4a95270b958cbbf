// Bento validates linked content arrangements against named slot layouts.
//
// It serves an HTTP API for validating the entries linked to a content
// field against the layout configured for that field: which slots
// exist, which content types each slot accepts, and how many entries
// the arrangement must contain in total.
//
// Usage:
//
//	# Start the API server with the default configuration
//	bento serve
//
//	# Start with a custom configuration file
//	bento serve --config /path/to/config.yaml
//
//	# Validate an entries file locally, without a server
//	bento check --layouts ./layouts --content-type landingSection --field cards --entries entries.json
//
//	# Lint layout files for unsatisfiable rules
//	bento lint --layouts ./layouts
//
//	# Query recorded validation runs
//	bento history --field cards --only-invalid
package main

func main() {
	Execute()
}
