// Package analytics derives calendar and bucket columns from a cleaned table
// and answers summary queries over it.
//
// Two analyzers exist, one per dataset variant:
//
//   - ViolationAnalyzer: violation type shares, temporal trends, location
//     counts, vehicle by violation cross-tabs, time of day, driver
//     demographics, fine statistics and seasonal shares
//   - AccidentAnalyzer: accidents per month, severity, class and weather,
//     victims per municipality and per hour, severity by class pivot
//
// Construction validates the table and computes derived columns once. The
// set of available columns is captured as a domain.Schema at that point;
// a query that depends on a column the table never had fails with a
// VALIDATION error instead of returning an empty result.
//
// Queries never modify the analyzer. Percent shares are rounded to two
// decimals; bucketed shares omit empty buckets and keep bucket order.
package analytics
