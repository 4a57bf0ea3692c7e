package ports

import (
	"context"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// LoginResult is what the backend returns for valid credentials.
type LoginResult struct {
	Session domain.Session
}

// AuthAPI is the backend's authentication surface.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, user domain.NewUser) error
}

// CatalogAPI fetches the product catalog.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// AddItemInput is the payload of an add-to-cart request.
type AddItemInput struct {
	Product    domain.Product
	ClientName string
	Quantity   int
}

// CartAPI is the server-authoritative cart. Every local mutation goes through it.
type CartAPI interface {
	ListItems(ctx context.Context, clientName string) ([]domain.CartLineItem, error)
	AddItem(ctx context.Context, in AddItemInput) (*domain.CartLineItem, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
}

// SpreadsheetUpload is an Excel order file.
type SpreadsheetUpload struct {
	Filename string
	Data     []byte
	Email    string
}

// OrderAPI is the order-processing collaborator.
type OrderAPI interface {
	// SubmitOrder sends an itemized order. idempotencyKey lets the backend
	// drop a resubmission of the same draft.
	SubmitOrder(ctx context.Context, draft domain.OrderDraft, email, idempotencyKey string) error
	SubmitSpreadsheet(ctx context.Context, upload SpreadsheetUpload) error
	History(ctx context.Context) ([]domain.HistoricalOrder, error)
}

// DirectoryAPI is the admin user directory.
type DirectoryAPI interface {
	ListUsers(ctx context.Context) ([]domain.DirectoryUser, error)
	CreateUser(ctx context.Context, user domain.NewUser) error
	UpdateUser(ctx context.Context, username string, fields map[string]string) error
	DeleteUser(ctx context.Context, username string) error
}
