package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellywell/monopay/internal/auth"
	"github.com/wellywell/monopay/internal/config"
	"github.com/wellywell/monopay/internal/handlers"
	"github.com/wellywell/monopay/internal/mono"
	"github.com/wellywell/monopay/internal/reconcile"
	"github.com/wellywell/monopay/internal/signature"
	"github.com/wellywell/monopay/internal/store"
)

type testEnv struct {
	server    *httptest.Server
	processor *fakeProcessor
}

func newTestEnv(t *testing.T, conf config.ServerConfig) *testEnv {
	processor, processorServer := newFakeProcessor()
	t.Cleanup(processorServer.Close)

	service := reconcile.NewService(
		store.NewMemoryStore(),
		mono.NewClient(processorServer.URL, "token", time.Second),
		signature.NewVerifier(conf.WebhookSecret),
		reconcile.Options{WebhookURL: conf.WebhookURL},
	)
	h := handlers.NewHandlerSet(service, conf.BaseURL,
		handlers.AdminCredentials{Login: conf.AdminLogin, PasswordHash: conf.AdminPasswordHash},
		[]byte(conf.Secret), 60)

	server := httptest.NewServer(NewRouter(&conf, h, RequestLogger{}).Handler())
	t.Cleanup(server.Close)

	return &testEnv{server: server, processor: processor}
}

func (e *testEnv) request() *resty.Request {
	return resty.New().SetBaseURL(e.server.URL).R()
}

func (e *testEnv) createInvoice(t *testing.T, orderID string) string {
	resp, err := e.request().
		SetBody(`{"orderId":"` + orderID + `","amountUah":150,"orderDesc":"Order","destination":"Course"}`).
		Post("/api/create-invoice")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())

	var invoice mono.Invoice
	require.NoError(t, json.Unmarshal(resp.Body(), &invoice))
	return invoice.InvoiceID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	for _, path := range []string{"/health", "/mono/webhook/health"} {
		resp, err := env.request().Get(path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Contains(t, resp.String(), `"ok":true`)
	}
}

func TestCreateInvoice(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	testCases := []struct {
		name         string
		method       string
		body         string
		expectedCode int
		expectedBody string
	}{
		{name: "get not allowed", method: http.MethodGet, expectedCode: http.StatusMethodNotAllowed},
		{name: "not json", method: http.MethodPost, body: "smth", expectedCode: http.StatusBadRequest, expectedBody: `{"ok":false,"error":"could not parse body"}`},
		{name: "no order id", method: http.MethodPost, body: `{"amountUah":1,"orderDesc":"d","destination":"d"}`, expectedCode: http.StatusBadRequest, expectedBody: `{"ok":false,"error":"orderId required"}`},
		{name: "zero amount", method: http.MethodPost, body: `{"orderId":"ORD-1","amountUah":"0","orderDesc":"d","destination":"d"}`, expectedCode: http.StatusBadRequest, expectedBody: `{"ok":false,"error":"amountUah must be > 0"}`},
		{name: "created", method: http.MethodPost, body: `{"orderId":"ORD-1","amountUah":"150.00","orderDesc":"d","destination":"d"}`, expectedCode: http.StatusOK, expectedBody: `{"invoiceId":"INV-1","pageUrl":"https://pay.example/INV-1"}`},
		{name: "duplicate", method: http.MethodPost, body: `{"orderId":"ORD-1","amountUah":"150.00","orderDesc":"d","destination":"d"}`, expectedCode: http.StatusConflict, expectedBody: `{"ok":false,"error":"order_exists","orderId":"ORD-1"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := env.request()
			req.Method = tc.method
			req.URL = "/api/create-invoice"
			req.SetBody([]byte(tc.body))

			resp, err := req.Send()
			assert.NoError(t, err, "error making HTTP request")

			assert.Equal(t, tc.expectedCode, resp.StatusCode(), "Response code didn't match expected")
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, resp.String())
			}
		})
	}

	sent := env.processor.lastRequest()
	assert.Equal(t, int64(15000), sent.Amount)
	assert.Equal(t, 980, sent.Ccy)
	assert.Equal(t, "ORD-1", sent.MerchantPaymInfo.Reference)
	assert.Equal(t, env.server.URL+"/mono/webhook", sent.WebHookURL)
}

func TestCreateInvoiceWebhookURL(t *testing.T) {
	t.Run("base url", func(t *testing.T) {
		env := newTestEnv(t, config.ServerConfig{BaseURL: "https://svc.example"})
		env.createInvoice(t, "ORD-1")
		assert.Equal(t, "https://svc.example/mono/webhook", env.processor.lastRequest().WebHookURL)
	})

	t.Run("forwarded headers", func(t *testing.T) {
		env := newTestEnv(t, config.ServerConfig{})
		resp, err := env.request().
			SetHeader("X-Forwarded-Proto", "https").
			SetHeader("X-Forwarded-Host", "pay.shop.example").
			SetBody(`{"orderId":"ORD-1","amountUah":1,"orderDesc":"d","destination":"d"}`).
			Post("/api/create-invoice")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Equal(t, "https://pay.shop.example/mono/webhook", env.processor.lastRequest().WebHookURL)
	})

	t.Run("configured webhook url", func(t *testing.T) {
		env := newTestEnv(t, config.ServerConfig{BaseURL: "https://svc.example", WebhookURL: "https://hooks.example/mono"})
		env.createInvoice(t, "ORD-1")
		assert.Equal(t, "https://hooks.example/mono", env.processor.lastRequest().WebHookURL)
	})
}

func TestOrderStatusAndWebhook(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})
	invoiceID := env.createInvoice(t, "ORD-1")

	resp, err := env.request().Get("/mono/invoice/ORD-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var status struct {
		OK        bool            `json:"ok"`
		OrderID   string          `json:"orderId"`
		InvoiceID string          `json:"invoiceId"`
		Status    string          `json:"status"`
		Invoice   json.RawMessage `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &status))
	assert.Equal(t, invoiceID, status.InvoiceID)
	assert.Equal(t, "created", status.Status)
	assert.Contains(t, string(status.Invoice), `"modifiedDate"`)

	resp, err = env.request().SetBody(`{"data":{"invoiceId":"` + invoiceID + `","status":"success"}}`).Post("/mono/webhook")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"ok":true}`, resp.String())

	resp, err = env.request().SetQueryParam("refresh", "false").Get("/mono/invoice/ORD-1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(resp.Body(), &status))
	assert.Equal(t, "success", status.Status)
	assert.Empty(t, status.Invoice)
}

func TestOrderStatusErrors(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})
	env.createInvoice(t, "ORD-1")

	resp, err := env.request().Get("/mono/invoice/ORD-404")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.JSONEq(t, `{"ok":false,"error":"order_not_found","orderId":"ORD-404"}`, resp.String())

	env.processor.fail(http.StatusServiceUnavailable)
	resp, err = env.request().Get("/mono/invoice/ORD-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
	assert.JSONEq(t, `{"ok":false,"error":"mono_status_failed","details":{"status":503,"data":{"errText":"unavailable"}}}`, resp.String())

	resp, err = env.request().SetQueryParam("refresh", "false").Get("/mono/invoice/ORD-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), `"status":"created"`)
}

func TestInvoiceByID(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})
	invoiceID := env.createInvoice(t, "ORD-1")
	env.processor.setStatus(invoiceID, "processing")

	resp, err := env.request().Get("/mono/invoice-by-id/" + invoiceID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), `"status":"processing"`)

	resp, err = env.request().Get("/mono/invoice-by-id/INV-404")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
}

func TestWebhookSignature(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{WebhookSecret: "secret"})
	env.createInvoice(t, "ORD-1")

	body := `{"reference":"ORD-1","status":"success"}`
	signer := signature.NewVerifier("secret").(*signature.HMAC)

	resp, err := env.request().SetBody(body).SetHeader("X-Signature", "bad").Post("/mono/webhook")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.JSONEq(t, `{"ok":false,"error":"bad_signature"}`, resp.String())

	resp, err = env.request().SetQueryParam("refresh", "false").Get("/mono/invoice/ORD-1")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), `"status":"created"`)

	resp, err = env.request().SetBody(body).SetHeader("X-Sign", signer.Sign([]byte(body))).Post("/mono/webhook")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = env.request().SetQueryParam("refresh", "false").Get("/mono/invoice/ORD-1")
	require.NoError(t, err)
	assert.Contains(t, resp.String(), `"status":"success"`)
}

func TestWebhookUnknownOrderAcknowledged(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	for _, body := range []string{`{"reference":"ORD-404","status":"success"}`, `garbage`, ``} {
		resp, err := env.request().SetBody(body).Post("/mono/webhook")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{AllowedOrigins: []string{"https://talent.example"}})

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/api/create-invoice", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://talent.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://talent.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestAdminOrders(t *testing.T) {
	hash, err := auth.HashPassword("mypassword")
	require.NoError(t, err)

	env := newTestEnv(t, config.ServerConfig{AdminLogin: "admin", AdminPasswordHash: hash, Secret: "secret"})

	resp, err := env.request().Get("/api/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	testCases := []struct {
		name         string
		body         string
		expectedCode int
		expectedBody string
	}{
		{"wrong body", "smth", http.StatusBadRequest, "Could not parse body\n"},
		{"empty", `{"login":"","password":"x"}`, http.StatusBadRequest, "Login and password cannot be empty\n"},
		{"wrong password", `{"login":"admin","password":"wrong"}`, http.StatusUnauthorized, "Wrong login or password\n"},
		{"good", `{"login":"admin","password":"mypassword"}`, http.StatusOK, "success"},
	}
	var cookies []*http.Cookie
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := env.request().SetBody(tc.body).Post("/api/admin/login")
			require.NoError(t, err)
			assert.Equal(t, tc.expectedCode, resp.StatusCode())
			assert.Equal(t, tc.expectedBody, string(resp.Body()))
			if resp.StatusCode() == http.StatusOK {
				cookies = resp.Cookies()
			}
		})
	}
	require.NotEmpty(t, cookies)

	resp, err = env.request().SetCookies(cookies).Get("/api/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	env.createInvoice(t, "ORD-2")
	env.createInvoice(t, "ORD-1")

	resp, err = env.request().SetCookies(cookies).SetQueryParam("limit", "1").Get("/api/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	var orders []struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-1", orders[0].OrderID)

	resp, err = env.request().SetCookies(cookies).SetQueryParam("limit", "x").Get("/api/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
}

func TestAdminDisabled(t *testing.T) {
	env := newTestEnv(t, config.ServerConfig{})

	resp, err := env.request().Get("/api/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}
