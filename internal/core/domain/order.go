package domain

import "time"

// OrderDraft is a durable cart snapshot staged across checkout.
type OrderDraft struct {
	// ID doubles as the idempotency key of the submission.
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	LineItems []CartLineItem `json:"line_items"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoricalOrder is a past order as reported by the backend. Excel orders
// carry no itemized cart.
type HistoricalOrder struct {
	Filename     string         `json:"filename"`
	Username     string         `json:"username"`
	CreatedAt    time.Time      `json:"created_at"` // zero when missing or unparsable
	IsExcelOrder bool           `json:"is_excel_order"`
	Cart         []CartLineItem `json:"cart,omitempty"`
	GrandTotal   float64        `json:"grand_total,omitempty"`
}

// HistoryCriteria filters order history. Date is a YYYY-MM-DD calendar day.
type HistoryCriteria struct {
	ClientName string `json:"client_name"`
	Date       string `json:"date"`
}

// SheetRow is one spreadsheet row keyed by its header cell.
type SheetRow map[string]string
