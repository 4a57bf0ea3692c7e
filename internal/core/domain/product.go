package domain

// Product is a read-only catalog snapshot; never mutated locally.
type Product struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id,omitempty"`
	HSNCode    string  `json:"hsn_code,omitempty"`
	PartName   string  `json:"part_name"`
	PartNumber string  `json:"part_number"`
	ModelCode  string  `json:"model_code,omitempty"`
	MRP        float64 `json:"mrp"`
}

// Criteria filters the catalog. Empty fields match everything.
type Criteria struct {
	PartNumber string `json:"part_number"`
	PartName   string `json:"part_name"`
	HSNCode    string `json:"hsn_code"`
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return trimSpace(c.PartNumber) == "" && trimSpace(c.PartName) == "" && trimSpace(c.HSNCode) == ""
}
