package ports

import (
	"context"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// Notifier delivers a local notification. Implementations must return
// immediately; callers never wait on delivery.
type Notifier interface {
	Notify(title, body string)
}

// SpreadsheetCodec converts between rows and an xlsx workbook.
type SpreadsheetCodec interface {
	Encode(sheet string, header []string, rows [][]string) ([]byte, error)
	// Decode reads the first sheet; the first row is the header.
	Decode(data []byte) (header []string, rows []domain.SheetRow, err error)
}

// Serializer runs jobs that share a key one at a time, in submission order.
// Jobs with different keys may run concurrently.
type Serializer interface {
	Do(ctx context.Context, key string, job func(context.Context) error) error
}
