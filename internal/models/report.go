package models

import "time"

// ReportType enumerates supported classroom reports.
type ReportType string

const (
	ReportTypeRoster      ReportType = "roster"
	ReportTypeSubmissions ReportType = "submissions"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// RegistryStats summarises registry activity captured from instrumentation.
type RegistryStats struct {
	OperationsTotal  uint64            `json:"operations_total"`
	OperationsFailed uint64            `json:"operations_failed"`
	ByOperation      map[string]uint64 `json:"by_operation"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
