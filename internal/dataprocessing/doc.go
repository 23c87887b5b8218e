// Package dataprocessing reads the flat contact export and cleans it into
// typed rows.
//
// ReadTable and ReadTableFile load the CSV into a header-first Table. Short
// rows are padded. A broken quote or a row wider than the header fails the
// read with a parsing error and nothing downstream runs.
//
// Preprocessor.Process then cleans every cell independently:
//
//   - text cells are trimmed, and "", "nan" and "None" become missing
//   - timestamp cells are parsed leniently and normalized to UTC; anything
//     unparsable or outside [2000-01-01, 2100-01-01) becomes missing
//
// Only a missing Contact ID column is fatal at this stage. Every other
// column may be absent, in which case all its cells are missing.
//
//	rows, stats, err := dataprocessing.NewPreprocessor(logger).LoadFile(ctx, "data/DataTask.csv")
package dataprocessing
