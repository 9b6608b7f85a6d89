// Package testutil contains fluent builders shared by tests across packages
// (selection states, lookup measurements, canned model replies). These
// helpers are not intended for production usage.
package testutil
