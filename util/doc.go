// Package util holds small helpers shared by the other packages: zero-value
// coalescing and masking secrets before they reach logs or the startup
// summary.
package util
