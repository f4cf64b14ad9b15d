// Package shared groups helpers used across econlab packages. The testutil
// subpackage captures slog output so tests can assert on what was logged.
package shared
