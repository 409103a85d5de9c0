package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Ticker string `json:"ticker" validate:"required,min=1,max=12"`
}

type RecentRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=50"`
}
