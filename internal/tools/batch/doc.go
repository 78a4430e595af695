// Package batch runs one tool operation over several participants and
// reports per-item outcomes, so a single failure does not hide the rest.
package batch
