// Package logging provides opt-in file-based logging with rotation for corpuskit.
// When the --debug flag is set, comprehensive logs are written to ~/.corpuskit/logs/
// for troubleshooting build and query runs.
//
// By default (without --debug), logging is minimal and goes to stderr only.
package logging
