// Package cli implements the command-line interface for foodie-events.
//
// The cli package provides the Cobra-based CLI for running a scrape. It
// loads configuration from the environment and an optional YAML file,
// builds the spreadsheet (or local) store, the headless browser, and the
// extraction client, and hands them to the pipeline runner.
package cli
