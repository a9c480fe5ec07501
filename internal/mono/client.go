package mono

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	createInvoicePath = "/api/merchant/invoice/create"
	invoiceStatusPath = "/api/merchant/invoice/status"

	DefaultTimeout = 15 * time.Second
)

type Client struct {
	token string
	http  *resty.Client
}

type MerchantPaymInfo struct {
	Reference   string `json:"reference"`
	Destination string `json:"destination"`
	Comment     string `json:"comment"`
}

type CreateInvoiceRequest struct {
	Amount           int64            `json:"amount"`
	Ccy              int              `json:"ccy"`
	MerchantPaymInfo MerchantPaymInfo `json:"merchantPaymInfo"`
	WebHookURL       string           `json:"webHookUrl"`
	RedirectURL      string           `json:"redirectUrl,omitempty"`
}

type Invoice struct {
	InvoiceID string `json:"invoiceId"`
	PageURL   string `json:"pageUrl"`
}

type InvoiceStatus struct {
	InvoiceID    string `json:"invoiceId"`
	Status       string `json:"status"`
	ModifiedDate string `json:"modifiedDate"`
	// Raw is the processor's response as received.
	Raw json.RawMessage `json:"-"`
}

func NewClient(baseURL string, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{token: token, http: c}
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}
	return c.http.R().SetContext(ctx).SetHeader("X-Token", c.token), nil
}

func (c *Client) CreateInvoice(ctx context.Context, payload CreateInvoiceRequest) (*Invoice, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	response, err := req.SetBody(payload).Post(createInvoicePath)
	if err != nil {
		return nil, &UpstreamError{Op: "create", Err: err}
	}
	if response.StatusCode() != http.StatusOK {
		return nil, &UpstreamError{Op: "create", StatusCode: response.StatusCode(), Body: response.String()}
	}

	var invoice Invoice
	err = json.Unmarshal(response.Body(), &invoice)
	if err != nil {
		return nil, &UpstreamError{Op: "create", StatusCode: response.StatusCode(), Body: response.String(),
			Err: fmt.Errorf("json parsing error %w", err)}
	}
	if invoice.InvoiceID == "" || invoice.PageURL == "" {
		return nil, &UpstreamError{Op: "create", StatusCode: response.StatusCode(), Body: response.String(),
			Err: fmt.Errorf("invoiceId or pageUrl missing")}
	}
	return &invoice, nil
}

func (c *Client) GetInvoiceStatus(ctx context.Context, invoiceID string) (*InvoiceStatus, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	response, err := req.SetQueryParam("invoiceId", invoiceID).Get(invoiceStatusPath)
	if err != nil {
		return nil, &UpstreamError{Op: "status", Err: err}
	}
	if response.StatusCode() != http.StatusOK {
		return nil, &UpstreamError{Op: "status", StatusCode: response.StatusCode(), Body: response.String()}
	}

	var status InvoiceStatus
	err = json.Unmarshal(response.Body(), &status)
	if err != nil {
		return nil, &UpstreamError{Op: "status", StatusCode: response.StatusCode(), Body: response.String(),
			Err: fmt.Errorf("json parsing error %w", err)}
	}
	status.Raw = append(json.RawMessage(nil), response.Body()...)
	if status.InvoiceID == "" {
		status.InvoiceID = invoiceID
	}
	return &status, nil
}
