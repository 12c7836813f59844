package enum

import "encoding/json"

// ReportKind identifies a printable report
type ReportKind int

const (
	ReportSales    ReportKind = 0
	ReportSessions ReportKind = 1
)

func (k ReportKind) String() string {
	switch k {
	case ReportSales:
		return "sales"
	case ReportSessions:
		return "sessions"
	}
	return "unknown"
}

// ParseReportKind converts a path segment into a report kind
func ParseReportKind(s string) (ReportKind, bool) {
	switch s {
	case "sales":
		return ReportSales, true
	case "sessions":
		return ReportSessions, true
	}
	return 0, false
}

func (k ReportKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}
