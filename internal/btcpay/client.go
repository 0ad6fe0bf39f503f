package btcpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrUnauthorized    = errors.New("btcpay unauthorized")
)

// Коды способов оплаты BTCPay.
const (
	MethodBTCOnChain   = "BTC-OnChain"
	MethodBTCLightning = "BTC-LightningNetwork"
	MethodXMR          = "XMR"
)

// MethodsForCurrency возвращает фильтр способов оплаты по предпочтению покупателя.
// Пустое предпочтение означает все доступные способы.
func MethodsForCurrency(currency string) []string {
	switch currency {
	case "bitcoin":
		return []string{MethodBTCOnChain, MethodBTCLightning}
	case "monero":
		return []string{MethodXMR}
	default:
		return []string{MethodBTCOnChain, MethodBTCLightning, MethodXMR}
	}
}

// Invoice описывает инвойс процессинга, как его видит это приложение.
type Invoice struct {
	ID           string
	Status       InvoiceStatus
	RawStatus    string
	Amount       decimal.Decimal
	Currency     string
	CheckoutLink string
	ExpiresAt    time.Time
}

// PaymentMethod описывает реквизиты оплаты одной криптовалютой.
type PaymentMethod struct {
	CryptoCode  string
	Destination string
	PaymentLink string
	AmountDue   decimal.Decimal
}

// CreateInvoiceParams - параметры создания инвойса.
type CreateInvoiceParams struct {
	Amount         decimal.Decimal
	Currency       string
	OrderID        string
	BuyerEmail     string
	PaymentMethods []string
}

// Client - интерфейс платёжного шлюза.
type Client interface {
	CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	GetPaymentMethods(ctx context.Context, invoiceID string) ([]PaymentMethod, error)
}

// HTTPClient реализует Client поверх Greenfield API BTCPay Server.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	storeID    string
	httpClient *http.Client
}

// NewHTTPClient создаёт HTTP-клиент шлюза.
func NewHTTPClient(baseURL, apiKey, storeID string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		storeID: storeID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type invoiceMetadata struct {
	OrderID    string `json:"orderId"`
	BuyerEmail string `json:"buyerEmail,omitempty"`
}

type invoiceCheckout struct {
	PaymentMethods []string `json:"paymentMethods,omitempty"`
}

type createInvoiceRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Metadata invoiceMetadata `json:"metadata"`
	Checkout invoiceCheckout `json:"checkout"`
}

type invoicePayload struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CheckoutLink   string          `json:"checkoutLink"`
	ExpirationTime int64           `json:"expirationTime"`
}

func (p *invoicePayload) toInvoice() *Invoice {
	inv := &Invoice{
		ID:           p.ID,
		Status:       ParseInvoiceStatus(p.Status),
		RawStatus:    p.Status,
		Amount:       p.Amount,
		Currency:     p.Currency,
		CheckoutLink: p.CheckoutLink,
	}
	if p.ExpirationTime > 0 {
		inv.ExpiresAt = time.Unix(p.ExpirationTime, 0)
	}
	return inv
}

// CreateInvoice создаёт инвойс на указанную сумму.
func (c *HTTPClient) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
	reqBody := createInvoiceRequest{
		Amount:   params.Amount,
		Currency: params.Currency,
		Metadata: invoiceMetadata{
			OrderID:    params.OrderID,
			BuyerEmail: params.BuyerEmail,
		},
		Checkout: invoiceCheckout{
			PaymentMethods: params.PaymentMethods,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice request: %w", err)
	}

	u, err := c.endpoint("invoices")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var payload invoicePayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode invoice response: %w", err)
		}
		return payload.toInvoice(), nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("unexpected btcpay status: %d", resp.StatusCode)
	}
}

// GetInvoice возвращает текущее состояние инвойса.
func (c *HTTPClient) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	u, err := c.endpoint("invoices/" + url.PathEscape(invoiceID))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload invoicePayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode invoice response: %w", err)
		}
		return payload.toInvoice(), nil
	case http.StatusNotFound:
		return nil, ErrInvoiceNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("unexpected btcpay status: %d", resp.StatusCode)
	}
}

type paymentMethodPayload struct {
	CryptoCode  string          `json:"cryptoCode"`
	Destination string          `json:"destination"`
	PaymentLink string          `json:"paymentLink"`
	Due         decimal.Decimal `json:"due"`
}

// GetPaymentMethods возвращает реквизиты оплаты по каждой валюте инвойса.
func (c *HTTPClient) GetPaymentMethods(ctx context.Context, invoiceID string) ([]PaymentMethod, error) {
	u, err := c.endpoint("invoices/" + url.PathEscape(invoiceID) + "/payment-methods")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payloads []paymentMethodPayload
		if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
			return nil, fmt.Errorf("decode payment methods: %w", err)
		}
		methods := make([]PaymentMethod, 0, len(payloads))
		for _, p := range payloads {
			methods = append(methods, PaymentMethod{
				CryptoCode:  p.CryptoCode,
				Destination: p.Destination,
				PaymentLink: p.PaymentLink,
				AmountDue:   p.Due,
			})
		}
		return methods, nil
	case http.StatusNotFound:
		return nil, ErrInvoiceNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("unexpected btcpay status: %d", resp.StatusCode)
	}
}

func (c *HTTPClient) endpoint(suffix string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid btcpay base url: %w", err)
	}
	u.Path = fmt.Sprintf("%s/api/v1/stores/%s/%s", u.Path, c.storeID, suffix)
	return u.String(), nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "token "+c.apiKey)
}
