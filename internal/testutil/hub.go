// Package testutil provides a scripted Payments Hub simulator for
// gateway and flow tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Hub is an in-memory stand-in for the Payments Hub test API. Payments
// advance toward COMPLETED as they are polled, which mimics the real
// hub's processing delay.
type Hub struct {
	Server *httptest.Server

	PublicKey  string
	PrivateKey string

	mu sync.Mutex

	// MonitorStatus is returned by /monitor
	MonitorStatus string
	// Methods maps currency code to available method names
	Methods map[string][]string
	// CompleteAfter is how many status polls a payment stays pending
	CompleteAfter int
	// AllowCancel makes PUT status transitions succeed while pending
	AllowCancel bool
	// RefundCompleteAfter is how many polls a refund stays pending
	RefundCompleteAfter int

	payments map[string]*hubPayment
	refunds  map[string]*hubRefund
	seq      int

	// CancelCalls counts PUT /payments/{id} requests
	CancelCalls int
}

type hubPayment struct {
	ID             string `json:"id"`
	MerchantRefNum string `json:"merchantRefNum"`
	Amount         int64  `json:"amount"`
	CurrencyCode   string `json:"currencyCode"`
	Status         string `json:"status"`
	Settlements    []struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
		Status string `json:"status"`
	} `json:"settlements,omitempty"`

	polls int
}

type hubRefund struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`

	polls int
}

// NewHub starts a simulator with one CARD method for USD and GBP. The
// server is closed automatically when the test finishes.
func NewHub(t *testing.T) *Hub {
	t.Helper()

	h := &Hub{
		PublicKey:           "pub-key",
		PrivateKey:          "priv-key",
		MonitorStatus:       "READY",
		Methods:             map[string][]string{"USD": {"CARD"}, "GBP": {"CARD"}},
		CompleteAfter:       1,
		RefundCompleteAfter: 1,
		payments:            make(map[string]*hubPayment),
		refunds:             make(map[string]*hubRefund),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /monitor", h.auth(h.PublicKey, h.handleMonitor))
	mux.HandleFunc("GET /paymentmethods", h.auth(h.PublicKey, h.handleMethods))
	mux.HandleFunc("POST /paymenthandles", h.auth(h.PrivateKey, h.handleCreateHandle))
	mux.HandleFunc("POST /payments", h.auth(h.PrivateKey, h.handleCreatePayment))
	mux.HandleFunc("GET /payments/{id}", h.auth(h.PrivateKey, h.handleGetPayment))
	mux.HandleFunc("PUT /payments/{id}", h.auth(h.PrivateKey, h.handleCancelPayment))
	mux.HandleFunc("POST /settlements/{id}/refunds", h.auth(h.PrivateKey, h.handleCreateRefund))
	mux.HandleFunc("GET /refunds/{id}", h.auth(h.PrivateKey, h.handleGetRefund))

	h.Server = httptest.NewServer(mux)
	t.Cleanup(h.Server.Close)
	return h
}

// URL returns the simulator's base URL
func (h *Hub) URL() string { return h.Server.URL }

func (h *Hub) auth(key string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Basic "+key {
			h.writeError(w, http.StatusUnauthorized, "5279", "The authentication credentials are invalid.")
			return
		}
		next(w, r)
	}
}

func (h *Hub) handleMonitor(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	status := h.MonitorStatus
	h.mu.Unlock()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Hub) handleMethods(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	names := h.Methods[r.URL.Query().Get("currencyCode")]
	h.mu.Unlock()

	type method struct {
		PaymentMethod string `json:"paymentMethod"`
		CurrencyCode  string `json:"currencyCode"`
	}
	out := struct {
		PaymentMethods []method `json:"paymentMethods"`
	}{}
	for _, n := range names {
		out.PaymentMethods = append(out.PaymentMethods, method{PaymentMethod: n, CurrencyCode: r.URL.Query().Get("currencyCode")})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Hub) handleCreateHandle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Simulator") != "INTERNAL" {
		h.writeError(w, http.StatusBadRequest, "5068", "Simulator header required on the test hub.")
		return
	}
	var req struct {
		MerchantRefNum string `json:"merchantRefNum"`
		Amount         int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MerchantRefNum == "" {
		h.writeError(w, http.StatusBadRequest, "5068", "Either you submitted an invalid request or a required field is missing.")
		return
	}

	h.mu.Lock()
	h.seq++
	token := fmt.Sprintf("SChandle%04d", h.seq)
	h.mu.Unlock()

	h.writeJSON(w, http.StatusCreated, map[string]string{
		"id":                 token,
		"paymentHandleToken": token,
		"status":             "PAYABLE",
	})
}

func (h *Hub) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MerchantRefNum     string `json:"merchantRefNum"`
		Amount             int64  `json:"amount"`
		CurrencyCode       string `json:"currencyCode"`
		PaymentHandleToken string `json:"paymentHandleToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentHandleToken == "" {
		h.writeError(w, http.StatusBadRequest, "5068", "Either you submitted an invalid request or a required field is missing.")
		return
	}

	h.mu.Lock()
	h.seq++
	p := &hubPayment{
		ID:             fmt.Sprintf("pay-%04d", h.seq),
		MerchantRefNum: req.MerchantRefNum,
		Amount:         req.Amount,
		CurrencyCode:   req.CurrencyCode,
		Status:         "PROCESSING",
	}
	h.payments[p.ID] = p
	h.mu.Unlock()

	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Hub) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.payments[r.PathValue("id")]
	if !ok {
		h.writeError(w, http.StatusNotFound, "5269", "The ID(s) specified in the URL do not correspond to the values in the system.")
		return
	}

	if p.Status == "PROCESSING" {
		p.polls++
		if p.polls > h.CompleteAfter {
			p.Status = "COMPLETED"
			p.Settlements = append(p.Settlements, struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
				Status string `json:"status"`
			}{ID: "settle-" + p.ID, Amount: p.Amount, Status: "PENDING"})
		}
	}

	h.writeJSON(w, http.StatusOK, p)
}

func (h *Hub) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status != "CANCELLED" {
		h.writeError(w, http.StatusBadRequest, "5068", "Either you submitted an invalid request or a required field is missing.")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.CancelCalls++
	p, ok := h.payments[r.PathValue("id")]
	if !ok {
		h.writeError(w, http.StatusNotFound, "5269", "The ID(s) specified in the URL do not correspond to the values in the system.")
		return
	}
	if p.Status != "PROCESSING" || !h.AllowCancel {
		h.writeError(w, http.StatusConflict, "5021", "The payment is no longer in a cancellable state.")
		return
	}

	p.Status = "CANCELLED"
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Hub) handleCreateRefund(w http.ResponseWriter, r *http.Request) {
	settlementID := r.PathValue("id")

	h.mu.Lock()
	defer h.mu.Unlock()

	if !strings.HasPrefix(settlementID, "settle-") {
		h.writeError(w, http.StatusNotFound, "5269", "The ID(s) specified in the URL do not correspond to the values in the system.")
		return
	}

	var req struct {
		MerchantRefNum string `json:"merchantRefNum"`
		Amount         int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "5068", "Either you submitted an invalid request or a required field is missing.")
		return
	}

	h.seq++
	rf := &hubRefund{
		ID:     fmt.Sprintf("ref-%04d", h.seq),
		Amount: req.Amount,
		Status: "PENDING",
	}
	h.refunds[rf.ID] = rf
	h.writeJSON(w, http.StatusCreated, rf)
}

func (h *Hub) handleGetRefund(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rf, ok := h.refunds[r.PathValue("id")]
	if !ok {
		h.writeError(w, http.StatusNotFound, "5269", "The ID(s) specified in the URL do not correspond to the values in the system.")
		return
	}

	if rf.Status == "PENDING" {
		rf.polls++
		if rf.polls > h.RefundCompleteAfter {
			rf.Status = "COMPLETED"
		}
	}

	h.writeJSON(w, http.StatusOK, rf)
}

// Payment returns the stored payment, for assertions
func (h *Hub) Payment(id string) (status string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.payments[id]
	if !ok {
		return "", false
	}
	return p.Status, true
}

func (h *Hub) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Hub) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, code, message)
}
