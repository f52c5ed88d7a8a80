// Package rules implements the sweeps that run over the board: recurrence
// generation, dependency blocking, reminder detection and auto-archive.
// Every function takes the state explicitly and the current time as an
// argument so sweeps are deterministic under test.
package rules
