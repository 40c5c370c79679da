// Package stats computes summary statistics over equipment sensor readings
// uploaded as CSV: row count, mean Pressure and Temperature, and the
// distribution of the Type column.
package stats
