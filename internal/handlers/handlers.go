package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
	"github.com/wellywell/monopay/internal/auth"
	"github.com/wellywell/monopay/internal/mono"
	"github.com/wellywell/monopay/internal/reconcile"
	"github.com/wellywell/monopay/internal/signature"
	"github.com/wellywell/monopay/internal/store"
	"github.com/wellywell/monopay/internal/types"
	"github.com/wellywell/monopay/internal/validate"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 100
)

type AdminCredentials struct {
	Login        string
	PasswordHash string
}

type HandlerSet struct {
	service              *reconcile.Service
	baseURL              string
	admin                AdminCredentials
	secret               []byte
	cookieExpiresSeconds int
}

var (
	ErrCouldNotParseBody = errors.New("could not parse body")
	ErrAuthDataEmpty     = errors.New("login or password cannot be empty")
)

func NewHandlerSet(service *reconcile.Service, baseURL string, admin AdminCredentials, secret []byte, cookieExpiresSecs int) *HandlerSet {
	return &HandlerSet{
		service:              service,
		baseURL:              strings.TrimRight(baseURL, "/"),
		admin:                admin,
		secret:               secret,
		cookieExpiresSeconds: cookieExpiresSecs,
	}
}

type errorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	OrderID string `json:"orderId,omitempty"`
	Details any    `json:"details,omitempty"`
}

type upstreamDetails struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	response, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Could not serialize result", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(response)
	if err != nil {
		logger.Errorf("Could not write response: %s", err)
	}
}

// upstreamData returns the processor body as JSON when it is JSON.
func upstreamData(body string) any {
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

func (h *HandlerSet) handleError(w http.ResponseWriter, err error) {
	var badRequest *validate.BadRequestError
	var orderExists *store.OrderExistsError
	var invoiceConflict *store.InvoiceConflictError
	var orderNotFound *store.OrderNotFoundError
	var upstream *mono.UpstreamError

	switch {
	case errors.As(err, &badRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: badRequest.Error()})
	case errors.As(err, &orderExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "order_exists", OrderID: orderExists.OrderID})
	case errors.As(err, &invoiceConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "invoice_conflict", OrderID: invoiceConflict.OrderID})
	case errors.As(err, &orderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order_not_found", OrderID: orderNotFound.OrderID})
	case errors.As(err, &upstream):
		logger.Warning(err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   fmt.Sprintf("mono_%s_failed", upstream.Op),
			Details: upstreamDetails{Status: upstream.StatusCode, Data: upstreamData(upstream.Body)},
		})
	case errors.Is(err, mono.ErrMissingToken):
		logger.Error(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Missing env: MONO_TOKEN"})
	default:
		logger.Error(err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "error"})
	}
}

// publicBaseURL is where the processor can reach this service.
func (h *HandlerSet) publicBaseURL(req *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	proto := req.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
		if req.TLS == nil && req.Header.Get("X-Forwarded-Host") == "" {
			proto = "http"
		}
	}
	host := req.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = req.Host
	}
	return fmt.Sprintf("%s://%s", proto, host)
}

func (h *HandlerSet) HandleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339Nano)})
}

func (h *HandlerSet) HandleCreateInvoice(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not read body"})
		return
	}

	var data reconcile.CreateInvoiceRequest
	err = json.Unmarshal(body, &data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrCouldNotParseBody.Error()})
		return
	}
	data.CallbackURL = h.publicBaseURL(req) + "/mono/webhook"

	invoice, err := h.service.CreateInvoice(req.Context(), data)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

type statusResponse struct {
	OK        bool            `json:"ok"`
	OrderID   string          `json:"orderId,omitempty"`
	InvoiceID string          `json:"invoiceId"`
	Status    types.Status    `json:"status"`
	Invoice   json.RawMessage `json:"invoice,omitempty"`
}

func (h *HandlerSet) HandleGetOrderStatus(w http.ResponseWriter, req *http.Request) {

	orderID := chi.URLParam(req, "orderId")
	refresh := req.URL.Query().Get("refresh") != "false"

	result, err := h.service.GetOrderStatus(req.Context(), orderID, refresh)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response := statusResponse{
		OK:        true,
		OrderID:   result.Order.OrderID,
		InvoiceID: result.Order.InvoiceID,
		Status:    result.Order.Status,
	}
	if result.Invoice != nil {
		response.Invoice = result.Invoice.Raw
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *HandlerSet) HandleGetInvoiceStatus(w http.ResponseWriter, req *http.Request) {

	invoiceID := chi.URLParam(req, "invoiceId")

	invoice, err := h.service.GetInvoiceStatus(req.Context(), invoiceID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		OK:        true,
		InvoiceID: invoiceID,
		Status:    types.NormalizeStatus(invoice.Status),
		Invoice:   invoice.Raw,
	})
}

// HandleWebhook answers 200 to everything that passes the signature check,
// so the processor does not retry notifications we cannot use.
func (h *HandlerSet) HandleWebhook(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		logger.Warningf("Could not read webhook body: %s", err)
		body = nil
	}

	_, err = h.service.HandleWebhook(req.Context(), body, signature.FromRequest(req))
	if err != nil {
		if errors.Is(err, signature.ErrUnauthorized) {
			logger.Warning("Webhook with bad signature rejected")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "bad_signature"})
			return
		}
		logger.Error(err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *HandlerSet) parseAuthData(body []byte) (login string, password string, err error) {

	var data struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	err = json.Unmarshal(body, &data)
	if err != nil {
		return "", "", ErrCouldNotParseBody
	}

	if data.Login == "" || data.Password == "" {
		return "", "", ErrAuthDataEmpty
	}

	return data.Login, data.Password, nil
}

func (h *HandlerSet) HandleLogin(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	login, password, err := h.parseAuthData(body)
	if err != nil {
		if errors.Is(err, ErrAuthDataEmpty) {
			http.Error(w, "Login and password cannot be empty", http.StatusBadRequest)
			return
		}
		http.Error(w, "Could not parse body", http.StatusBadRequest)
		return
	}

	if login != h.admin.Login || !auth.CheckPasswordHash(password, h.admin.PasswordHash) {
		http.Error(w, "Wrong login or password", http.StatusUnauthorized)
		return
	}

	err = auth.SetAuthCookie(login, w, h.secret, h.cookieExpiresSeconds)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")

	_, err = w.Write([]byte("success"))
	if err != nil {
		logger.Errorf("Could not write response: %s", err)
	}
}

func (h *HandlerSet) HandleListOrders(w http.ResponseWriter, req *http.Request) {

	limit := defaultListLimit
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	after := req.URL.Query().Get("after")
	login, ok := auth.GetAuthenticatedUser(req)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orders, err := h.service.ListOrders(req.Context(), after, limit)
	if err != nil {
		h.handleError(w, err)
		return
	}
	logger.Infof("Admin %s listed %d orders after %q", login, len(orders), after)

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
