// Package api serves HTTP helpers around the conversion core: bundle id
// derivation and inspection of wire packets and sanitized transactions.
package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/mux"

	"txbridge/internal/codec"
	"txbridge/internal/convert"
	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/pkg/wire"
)

// maxBodySize bounds request bodies; a bundle of a few hundred max-size
// transactions fits comfortably.
const maxBodySize = 1 << 20

// BundleRequest carries base64-encoded serialized transactions.
type BundleRequest struct {
	Transactions []string `json:"transactions"`
}

// BundleResponse is the derived bundle id.
type BundleResponse struct {
	UUID         string `json:"uuid"`
	Transactions int    `json:"transactions"`
}

// PacketResponse describes a decoded wire packet.
type PacketResponse struct {
	Signatures []string `json:"signatures"`
	Version    string   `json:"version"`
	Size       int      `json:"size"`
	Addr       string   `json:"addr"`
	Port       uint16   `json:"port"`
	SimpleVote bool     `json:"simple_vote"`
	Forwarded  bool     `json:"forwarded"`
}

// SanitizedResponse describes a wire sanitized transaction accepted by the
// sanitized mapper.
type SanitizedResponse struct {
	Signature     string `json:"signature"`
	MessageHash   string `json:"message_hash"`
	LoadedCount   int    `json:"loaded_addresses"`
	IsSimpleVote  bool   `json:"is_simple_vote"`
	Instructions  int    `json:"instructions"`
	AccountKeys   int    `json:"account_keys"`
	AddressTables int    `json:"address_table_lookups"`
}

// Handler holds the dependencies for API handlers.
type Handler struct {
	mapper *convert.SanitizedMapper
	log    *logger.L
}

// NewHandler creates a handler that validates sanitized transactions with
// mapper.
func NewHandler(mapper *convert.SanitizedMapper) *Handler {
	return &Handler{mapper: mapper, log: logger.New("api")}
}

// Router defines the API routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/bundles/uuid", h.bundleUUIDHandler).Methods("POST")
	r.HandleFunc("/api/v1/packets/decode", h.decodePacketHandler).Methods("POST")
	r.HandleFunc("/api/v1/transactions/sanitized", h.sanitizedHandler).Methods("POST")
	return r
}

// bundleUUIDHandler derives the id of the bundle formed by the posted
// transactions.
func (h *Handler) bundleUUIDHandler(w http.ResponseWriter, r *http.Request) {
	var req BundleRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("failed to decode request: %w", err))
		return
	}

	txs := make([]model.VersionedTransaction, 0, len(req.Transactions))
	for i, s := range req.Transactions {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			h.fail(w, http.StatusBadRequest, fmt.Errorf("transaction %d: %w", i, err))
			return
		}
		tx, err := codec.DecodeTransaction(raw)
		if err != nil {
			h.fail(w, http.StatusBadRequest, fmt.Errorf("transaction %d: %w", i, err))
			return
		}
		txs = append(txs, tx)
	}

	id, err := convert.DeriveBundleID(txs)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	h.respond(w, BundleResponse{UUID: id, Transactions: len(txs)})
}

// decodePacketHandler decodes a wire Packet body and the transaction it
// carries.
func (h *Handler) decodePacketHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return
	}
	var wp wire.Packet
	if err := wp.Unmarshal(body); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	packet := convert.PacketFromWire(&wp)
	tx, err := convert.TransactionFromWire(&wp)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	resp := PacketResponse{
		Signatures: make([]string, 0, len(tx.Signatures)),
		Version:    versionName(tx.Message.Version),
		Size:       packet.Meta.Size,
		Addr:       packet.Meta.Addr.String(),
		Port:       packet.Meta.Port,
		SimpleVote: packet.Meta.IsSimpleVoteTx(),
		Forwarded:  packet.Meta.Forwarded(),
	}
	for _, sig := range tx.Signatures {
		resp.Signatures = append(resp.Signatures, sig.String())
	}
	h.respond(w, resp)
}

// sanitizedHandler validates a wire SanitizedTransaction body.
func (h *Handler) sanitizedHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return
	}
	var ws wire.SanitizedTransaction
	if err := ws.Unmarshal(body); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	st, err := h.mapper.FromWire(&ws)
	if err != nil {
		status := http.StatusInternalServerError
		if fault.IsErrInvalid(err) {
			status = http.StatusUnprocessableEntity
		}
		h.fail(w, status, err)
		return
	}

	msg := &st.Transaction.Message
	resp := SanitizedResponse{
		MessageHash:   st.MessageHash.String(),
		LoadedCount:   st.LoadedAddresses.Len(),
		IsSimpleVote:  st.IsSimpleVote,
		Instructions:  len(msg.Instructions),
		AccountKeys:   len(msg.AccountKeys),
		AddressTables: len(msg.AddressTableLookups),
	}
	if sig, ok := st.Transaction.FirstSignature(); ok {
		resp.Signature = sig.String()
	}
	h.respond(w, resp)
}

func (h *Handler) respond(w http.ResponseWriter, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, fmt.Errorf("failed to marshal response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) fail(w http.ResponseWriter, status int, err error) {
	h.log.Warnf("request failed with %d: %s", status, err)
	http.Error(w, err.Error(), status)
}

func versionName(v model.MessageVersion) string {
	if v == model.MessageV0 {
		return "v0"
	}
	return "legacy"
}
