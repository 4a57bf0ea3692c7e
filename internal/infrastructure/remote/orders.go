package remote

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (c *Client) SubmitOrder(ctx context.Context, draft domain.OrderDraft, email, idempotencyKey string) error {
	lines := make([]cartItemDTO, 0, len(draft.LineItems))
	for _, it := range draft.LineItems {
		lines = append(lines, cartItemFromDomain(it))
	}
	body, err := jsonBody(orderMailRequest{Username: draft.Username, Email: email, CartData: lines})
	if err != nil {
		return err
	}
	r := request{
		op:          "submit order",
		method:      "POST",
		path:        "/order/appMail",
		body:        body,
		failMessage: "Failed to send order. Try again.",
	}
	if idempotencyKey != "" {
		r.headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	return c.do(ctx, r, nil)
}

func (c *Client) SubmitSpreadsheet(ctx context.Context, upload ports.SpreadsheetUpload) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.Filename))
	h.Set("Content-Type", xlsxMIME)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return err
	}
	if err := w.WriteField("email", upload.Email); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.do(ctx, request{
		op:          "upload excel order",
		method:      "POST",
		path:        "/order/appMail",
		body:        &buf,
		contentType: w.FormDataContentType(),
		failMessage: "Failed to upload Excel order",
	}, nil)
}

func (c *Client) History(ctx context.Context) ([]domain.HistoricalOrder, error) {
	var dtos []historyDTO
	err := c.do(ctx, request{
		op:          "order history",
		method:      "GET",
		path:        "/order/history",
		failMessage: "Failed to fetch orders.",
	}, &dtos)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoricalOrder, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}
