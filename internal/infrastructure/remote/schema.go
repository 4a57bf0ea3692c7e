package remote

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// flexString accepts a JSON string or number. The backend emits HSN codes
// both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUserDTO struct {
	MongoID  string `json:"_id"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *loginUserDTO `json:"user"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type productDTO struct {
	MongoID   string     `json:"_id"`
	ID        flexString `json:"ID"`
	HSNCode   flexString `json:"HSN_CODE"`
	PartName  string     `json:"PART_NAME"`
	PartNo    string     `json:"PART_NO"`
	ModelCode flexString `json:"MODEL_CODE"`
	MRP       float64    `json:"MRP"`
}

func (p productDTO) toDomain() domain.Product {
	return domain.Product{
		ID:         p.MongoID,
		ExternalID: string(p.ID),
		HSNCode:    string(p.HSNCode),
		PartName:   p.PartName,
		PartNumber: p.PartNo,
		ModelCode:  string(p.ModelCode),
		MRP:        p.MRP,
	}
}

type cartItemDTO struct {
	MongoID    string     `json:"_id,omitempty"`
	ID         flexString `json:"ID,omitempty"`
	ClientName string     `json:"CLIENT_NAME"`
	HSNCode    flexString `json:"HSN_CODE,omitempty"`
	PartName   string     `json:"PART_NAME"`
	PartNum    string     `json:"PART_NUM"`
	MRP        float64    `json:"MRP"`
	Quantity   int        `json:"QUANTITY"`
	Total      float64    `json:"TOTAL,omitempty"`
	Order      string     `json:"ORDER,omitempty"`
}

func (c cartItemDTO) toDomain() domain.CartLineItem {
	item := domain.CartLineItem{
		ID:         c.MongoID,
		ExternalID: string(c.ID),
		OrderRef:   c.Order,
		ClientName: c.ClientName,
		HSNCode:    string(c.HSNCode),
		PartName:   c.PartName,
		PartNumber: c.PartNum,
		MRP:        c.MRP,
		Quantity:   c.Quantity,
	}
	return item.WithQuantity(c.Quantity)
}

func cartItemFromDomain(i domain.CartLineItem) cartItemDTO {
	return cartItemDTO{
		MongoID:    i.ID,
		ID:         flexString(i.ExternalID),
		ClientName: i.ClientName,
		HSNCode:    flexString(i.HSNCode),
		PartName:   i.PartName,
		PartNum:    i.PartNumber,
		MRP:        i.MRP,
		Quantity:   i.Quantity,
		Total:      i.Total,
		Order:      i.OrderRef,
	}
}

type addItemRequest struct {
	ID         string  `json:"ID"`
	ClientName string  `json:"CLIENT_NAME"`
	HSNCode    string  `json:"HSN_CODE"`
	PartName   string  `json:"PART_NAME"`
	PartNum    string  `json:"PART_NUM"`
	MRP        float64 `json:"MRP"`
	Quantity   int     `json:"QUANTITY"`
}

type updateQuantityRequest struct {
	Quantity int `json:"QUANTITY"`
}

type orderMailRequest struct {
	Username string        `json:"username"`
	Email    string        `json:"email"`
	CartData []cartItemDTO `json:"cartData"`
}

type historyDTO struct {
	Filename     string        `json:"filename"`
	Username     string        `json:"username"`
	CreatedAt    string        `json:"createdAt"`
	IsExcelOrder bool          `json:"isExcelOrder"`
	Cart         []cartItemDTO `json:"cart"`
	GrandTotal   flexString    `json:"grandTotal"`
}

func (h historyDTO) toDomain() domain.HistoricalOrder {
	o := domain.HistoricalOrder{
		Filename:     h.Filename,
		Username:     h.Username,
		CreatedAt:    parseTimestamp(h.CreatedAt),
		IsExcelOrder: h.IsExcelOrder,
	}
	if !h.IsExcelOrder {
		o.Cart = make([]domain.CartLineItem, 0, len(h.Cart))
		for _, c := range h.Cart {
			o.Cart = append(o.Cart, c.toDomain())
		}
		o.GrandTotal, _ = strconv.ParseFloat(strings.TrimSpace(string(h.GrandTotal)), 64)
	}
	return o
}

// parseTimestamp returns the zero time for missing or unparsable values.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type userDTO struct {
	MongoID  string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (u userDTO) toDomain() domain.DirectoryUser {
	return domain.DirectoryUser{
		ID:       u.MongoID,
		Name:     u.Name,
		Username: u.Username,
		Company:  u.Company,
		Address:  u.Address,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}

type newUserRequest struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func newUserFromDomain(u domain.NewUser) newUserRequest {
	return newUserRequest(u)
}
