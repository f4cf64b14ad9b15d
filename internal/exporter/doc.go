// Package exporter renders fitted regression models for people and
// spreadsheets.
//
// CSVWriter writes observed, fitted and residual series (with an optional
// UTF-8 BOM so Excel detects the encoding). Summary renders a plain-text
// estimation report with coefficient inference, diagnostics and fit-quality
// warnings. Assess produces those warnings on their own for API responses.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter("reports", logger)
//	err := writer.WriteSeries("fit.csv", model)
//
//	report := exporter.Summary(model, diag, exporter.SummaryOptions{Response: "Y"})
//	fmt.Print(report)
package exporter
