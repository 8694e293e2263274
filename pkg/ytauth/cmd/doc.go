// Package cmd implements the cobra command tree for the ytauth CLI. The
// capture flow runs on the root command itself; subcommands cover token
// verification, version info, and shell completion.
package cmd
