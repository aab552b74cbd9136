// Package logging wires log/slog with the console and JSON handlers used
// across rscapture, plus small attribute helpers so call sites stay terse.
package logging
