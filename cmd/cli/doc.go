// Package cli constructs the github-default-branch command-line interface,
// wiring the Cobra command hierarchy, configuration loader, and structured
// logging primitives.
package cli
