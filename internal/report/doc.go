// Package report renders a human-readable or machine-readable summary of a
// finished run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminals and log files
//   - MarkdownWriter: Markdown with tables and a decision pie chart
//   - JSONWriter: structured JSON for tool integration
//
// All writers work from the same Summary, which is derived from a
// model.Run, so the formats never disagree about the numbers.
package report
