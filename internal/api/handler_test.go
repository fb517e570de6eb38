package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txbridge/internal/codec"
	"txbridge/internal/convert"
	"txbridge/internal/convert/mocks"
	"txbridge/internal/core/model"
	"txbridge/internal/fault"
	"txbridge/internal/fixtures"
	"txbridge/internal/sanitize"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func newServer(t *testing.T) *httptest.Server {
	h := NewHandler(convert.NewSanitizedMapper(sanitize.NewFactory()))
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, contentType string, body []byte) *http.Response {
	resp, err := http.Post(srv.URL+path, contentType, bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func encodeTx(t *testing.T, tx model.VersionedTransaction) string {
	raw, err := codec.EncodeTransaction(&tx)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestBundleUUID(t *testing.T) {
	srv := newServer(t)
	v0, _ := fixtures.V0Transaction(2)
	txs := []model.VersionedTransaction{fixtures.LegacyTransaction(1), v0}

	body, err := json.Marshal(BundleRequest{Transactions: []string{encodeTx(t, txs[0]), encodeTx(t, txs[1])}})
	require.NoError(t, err)
	resp := post(t, srv, "/api/v1/bundles/uuid", "application/json", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got BundleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	want, err := convert.DeriveBundleID(txs)
	require.NoError(t, err)
	assert.Equal(t, want, got.UUID)
	assert.Equal(t, 2, got.Transactions)
}

func TestBundleUUIDRejectsBadInput(t *testing.T) {
	srv := newServer(t)
	unsigned := fixtures.LegacyTransaction(1)
	unsigned.Signatures = nil

	cases := map[string][]byte{
		"not json":     []byte("{"),
		"not base64":   []byte(`{"transactions":["***"]}`),
		"not a tx":     []byte(`{"transactions":["AQI="]}`),
		"no signature": []byte(`{"transactions":["` + encodeTx(t, unsigned) + `"]}`),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := post(t, srv, "/api/v1/bundles/uuid", "application/json", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDecodePacket(t *testing.T) {
	srv := newServer(t)
	tx := fixtures.LegacyTransaction(5)
	wp, err := convert.TransactionToWire(&tx)
	require.NoError(t, err)
	wp.Meta.Addr = "10.1.2.3"
	wp.Meta.Port = 8001
	wp.Meta.Flags.Forwarded = true
	body, err := wp.Marshal()
	require.NoError(t, err)

	resp := post(t, srv, "/api/v1/packets/decode", "application/octet-stream", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got PacketResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []string{tx.Signatures[0].String()}, got.Signatures)
	assert.Equal(t, "legacy", got.Version)
	assert.Equal(t, len(wp.Data), got.Size)
	assert.Equal(t, "10.1.2.3", got.Addr)
	assert.Equal(t, uint16(8001), got.Port)
	assert.True(t, got.Forwarded)
	assert.False(t, got.SimpleVote)
}

func TestDecodePacketRejectsGarbage(t *testing.T) {
	srv := newServer(t)
	resp := post(t, srv, "/api/v1/packets/decode", "application/octet-stream", []byte{0x0a, 0x05, 0x01})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSanitized(t *testing.T) {
	srv := newServer(t)
	tx, loaded := fixtures.V0Transaction(3)
	st := fixtures.Sanitized(tx, loaded)
	ws, err := convert.SanitizedToWire(&st)
	require.NoError(t, err)
	body, err := ws.Marshal()
	require.NoError(t, err)

	resp := post(t, srv, "/api/v1/transactions/sanitized", "application/octet-stream", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got SanitizedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, tx.Signatures[0].String(), got.Signature)
	assert.Equal(t, st.MessageHash.String(), got.MessageHash)
	assert.Equal(t, 2, got.LoadedCount)
	assert.Equal(t, 1, got.AddressTables)
	assert.False(t, got.IsSimpleVote)
}

func TestSanitizedRejectsShortHash(t *testing.T) {
	srv := newServer(t)
	tx, loaded := fixtures.V0Transaction(3)
	st := fixtures.Sanitized(tx, loaded)
	ws, err := convert.SanitizedToWire(&st)
	require.NoError(t, err)
	ws.MessageHash = ws.MessageHash[:31]
	body, err := ws.Marshal()
	require.NoError(t, err)

	resp := post(t, srv, "/api/v1/transactions/sanitized", "application/octet-stream", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSanitizedFactoryFailureStatus(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	tx, loaded := fixtures.V0Transaction(4)
	st := fixtures.Sanitized(tx, loaded)
	ws, err := convert.SanitizedToWire(&st)
	require.NoError(t, err)
	body, err := ws.Marshal()
	require.NoError(t, err)

	factory := mocks.NewMockSanitizedFactory(ctl)
	gomock.InOrder(
		factory.EXPECT().TryCreate(tx, st.MessageHash, loaded).Return(nil, errors.New("bank unavailable")),
		factory.EXPECT().TryCreate(tx, st.MessageHash, loaded).Return(nil, fault.ErrSanitize),
	)
	srv := httptest.NewServer(NewHandler(convert.NewSanitizedMapper(factory)).Router())
	defer srv.Close()

	resp := post(t, srv, "/api/v1/transactions/sanitized", "application/octet-stream", body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = post(t, srv, "/api/v1/transactions/sanitized", "application/octet-stream", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRouteMethods(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/bundles/uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
