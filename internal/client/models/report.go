package models

// LeadStatusSummary counts leads per pipeline status.
type LeadStatusSummary struct {
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Converted int `json:"converted"`
	Lost      int `json:"lost"`
}

// Sum is the number of leads across all statuses.
func (s LeadStatusSummary) Sum() int {
	return s.New + s.Contacted + s.Qualified + s.Converted + s.Lost
}

type EmployeeLeadRow struct {
	EmployeeID   int64             `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	Counts       LeadStatusSummary `json:"counts"`
}

// EmployeeLeadReport is computed server-side; the client only renders it.
type EmployeeLeadReport struct {
	Rows  []EmployeeLeadRow `json:"rows"`
	Total LeadStatusSummary `json:"total"`
}
