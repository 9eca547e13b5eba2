// Package paths provides centralized path handling for project-generator.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for the locations the tool reads and writes:
// the templates root, the scratch workspaces used by remote generation,
// the log file and the run history database.
package paths
