package request

// ReportQuery holds report filters. Dates accept RFC 3339 or YYYY-MM-DD.
type ReportQuery struct {
	Start    string `form:"start"`
	End      string `form:"end"`
	ClientID string `form:"client_id"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}
