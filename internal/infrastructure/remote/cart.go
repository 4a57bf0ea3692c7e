package remote

import (
	"context"
	"net/url"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var dtos []productDTO
	err := c.do(ctx, request{
		op:          "list products",
		method:      "GET",
		path:        "/products",
		failMessage: "Failed to load products.",
	}, &dtos)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) ListItems(ctx context.Context, clientName string) ([]domain.CartLineItem, error) {
	var dtos []cartItemDTO
	err := c.do(ctx, request{
		op:          "list cart",
		method:      "GET",
		path:        "/cart/items?client=" + url.QueryEscape(clientName),
		failMessage: "Failed to fetch cart items.",
	}, &dtos)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CartLineItem, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// AddItem posts the line and returns the item as stored by the backend. When
// the answer carries no item, or is not JSON at all, the client's cart is
// read back and the newest line for the part is used.
func (c *Client) AddItem(ctx context.Context, in ports.AddItemInput) (*domain.CartLineItem, error) {
	body, err := jsonBody(addItemRequest{
		ID:         in.Product.ExternalID,
		ClientName: in.ClientName,
		HSNCode:    in.Product.HSNCode,
		PartName:   in.Product.PartName,
		PartNum:    in.Product.PartNumber,
		MRP:        in.Product.MRP,
		Quantity:   in.Quantity,
	})
	if err != nil {
		return nil, err
	}

	var created cartItemDTO
	err = c.do(ctx, request{
		op:          "add to cart",
		method:      "POST",
		path:        "/cart/add",
		body:        body,
		failMessage: "Failed to add item to cart.",
		lenient:     true,
	}, &created)
	if err != nil {
		return nil, err
	}
	if created.MongoID != "" {
		item := created.toDomain()
		return &item, nil
	}

	items, err := c.ListItems(ctx, in.ClientName)
	if err != nil {
		return nil, err
	}
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].PartNumber == in.Product.PartNumber {
			item := items[i]
			return &item, nil
		}
	}
	return nil, &domain.RemoteError{Op: "add to cart", Message: "Failed to add item to cart.", Err: domain.ErrItemNotFound}
}

func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	body, err := jsonBody(updateQuantityRequest{Quantity: quantity})
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          "update cart",
		method:      "PUT",
		path:        "/cart/update/" + url.PathEscape(itemID),
		body:        body,
		failMessage: "Failed to update quantity.",
	}, nil)
}

func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.do(ctx, request{
		op:          "delete cart item",
		method:      "DELETE",
		path:        "/cart/delete/" + url.PathEscape(itemID),
		failMessage: "Failed to remove item.",
	}, nil)
}
