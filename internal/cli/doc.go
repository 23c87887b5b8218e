// Package cli holds the cobra command tree of the attribution binary.
//
// The run command loads configuration (file, .env, environment), applies
// the flags that were set on the command line, runs the pipeline once and
// prints the artifact paths with a per-source summary. SIGINT and SIGTERM
// cancel the run. ExitCode maps error types to process exit codes.
package cli
