package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/wellywell/monopay/internal/mono"
)

// fakeProcessor mimics the monobank invoice API.
type fakeProcessor struct {
	mu         sync.Mutex
	next       int
	statuses   map[string]string
	requests   []mono.CreateInvoiceRequest
	statusCode int
}

func newFakeProcessor() (*fakeProcessor, *httptest.Server) {
	f := &fakeProcessor{statuses: map[string]string{}, statusCode: http.StatusOK}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/merchant/invoice/create", func(w http.ResponseWriter, r *http.Request) {
		var req mono.CreateInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.next++
		id := fmt.Sprintf("INV-%d", f.next)
		f.statuses[id] = "created"
		f.requests = append(f.requests, req)
		fmt.Fprintf(w, `{"invoiceId":%q,"pageUrl":"https://pay.example/%s"}`, id, id)
	})

	mux.HandleFunc("/api/merchant/invoice/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.statusCode != http.StatusOK {
			w.WriteHeader(f.statusCode)
			fmt.Fprint(w, `{"errText":"unavailable"}`)
			return
		}
		id := r.URL.Query().Get("invoiceId")
		status, ok := f.statuses[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errCode":"NOT_FOUND"}`)
			return
		}
		fmt.Fprintf(w, `{"invoiceId":%q,"status":%q,"modifiedDate":"2024-05-01T10:00:00Z"}`, id, status)
	})

	return f, httptest.NewServer(mux)
}

func (f *fakeProcessor) setStatus(invoiceID string, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[invoiceID] = status
}

func (f *fakeProcessor) fail(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCode = code
}

func (f *fakeProcessor) lastRequest() mono.CreateInvoiceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeProcessor) lastInvoiceID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("INV-%d", f.next)
}
