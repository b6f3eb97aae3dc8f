package models

// Requests for the report HTTP endpoints. Defined in domain for consistency and reuse.

type ReportRequest struct {
	Refresh bool `query:"refresh" json:"refresh" default:"false"`
}

type AnomaliesRequest struct {
	Term string `query:"term" json:"term" validate:"required,min=1,max=64"`
}

type BaselineRequest struct {
	Term string `query:"term" json:"term" validate:"required,min=1,max=64"`
}

type SeriesRequest struct {
	Term string `query:"term" json:"term" validate:"required,min=1,max=64"`
	N    int    `query:"n" json:"n" default:"365" validate:"gte=1,lte=5000"`
}
