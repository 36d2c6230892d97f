// Package dataprocessing turns one raw incident file into a clean table.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Loader: reads CSV (through a gota dataframe) or XLSX (through excelize)
// into a domain.Table, parsing the designated date column day-first
// 2. Cleaner: applies a declarative RuleSet and returns a new table
// 3. Report: compares raw and cleaned tables for observability
//
// # Rule Sets
//
// AccidentRules (variant A) drops rows missing FECHA ACCIDENTE, GRAVEDAD,
// CLASE ACCIDENTE or MUNICIPIO, upper-cases ESTADO CLIMA, coerces the six
// victim counts to numbers (unreadable becomes 0) and derives TOTAL VICTIMAS
// as their sum. HORA ACCIDENTE is kept verbatim; HORA DEL DIA holds the
// parsed hour, or the unparsed sentinel for text that is not HH:MM.
//
// ViolationRules (variant B) drops rows missing Violation_ID,
// Violation_Type, Date or Location, fills defaults, title-cases the text
// columns, restricts Driver_Gender and Location to known labels and keeps
// the first row per Violation_ID. ViolationRulesBasic skips the
// Seatbelt_Worn and Helmet_Worn fills.
//
// Steps run in a fixed order: drop missing critical values, fills, numeric
// coercion, text normalization, domain restriction, deduplication, derived
// sums, derived hours. Cleaning a clean table returns an equal table.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	raw, err := loader.Load(ctx, "violations.csv", dataprocessing.LoadOptions{DateColumn: "Date"})
//	if err != nil {
//	    return err
//	}
//	cleaner := dataprocessing.NewCleaner(dataprocessing.ViolationRules(), logger)
//	clean, report, err := cleaner.CleanWithReport(ctx, raw)
//
// # Cleaning Report
//
// The report carries original_rows, cleaned_rows, rows_removed,
// columns_processed (rule set columns present in the raw table, in raw
// order), per-column null counts before and after, and the number of cells
// each step rewrote. It never feeds back into cleaning.
//
// # Error Handling
//
// A nil table is an INPUT_TYPE error. A table lacking required columns is a
// SCHEMA error naming every missing column. Unreadable numbers, dates and
// hours are never errors; they become 0, missing and unparsed respectively.
// A missing input file is NOT_FOUND and a malformed one is PARSING.
package dataprocessing
