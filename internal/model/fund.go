package model

// FundType distinguishes restricted from general-purpose money.
type FundType string

const (
	FundGeneral    FundType = "general"
	FundRestricted FundType = "restricted"
)

// Fund is a designated pot of money belonging to one church.
type Fund struct {
	ID       string
	ChurchID string
	Name     string
	Type     FundType
}
