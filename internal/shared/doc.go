// Package shared holds helpers used across packages. Its testutil
// subpackage provides table fixtures for both dataset variants and a
// buffered slog handler for asserting on log output.
package shared
