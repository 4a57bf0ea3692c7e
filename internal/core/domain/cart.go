package domain

// CartLineItem is one product entry in the session's cart.
// Total must equal MRP * Quantity after every mutation.
type CartLineItem struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id,omitempty"`
	OrderRef   string  `json:"order_ref,omitempty"`
	ClientName string  `json:"client_name"`
	HSNCode    string  `json:"hsn_code,omitempty"`
	PartName   string  `json:"part_name"`
	PartNumber string  `json:"part_number"`
	MRP        float64 `json:"mrp"`
	Quantity   int     `json:"quantity"`
	Total      float64 `json:"total"`
}

// WithQuantity returns a copy of the item with q applied and the total recomputed.
func (i CartLineItem) WithQuantity(q int) CartLineItem {
	i.Quantity = q
	i.Total = i.MRP * float64(q)
	return i
}
