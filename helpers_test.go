package trustly_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebamiro/trustly"
	"github.com/sebamiro/trustly/payload"
	"github.com/sebamiro/trustly/sign"
)

var (
	keysOnce           sync.Once
	merchantKey        *rsa.PrivateKey
	counterpartyKey    *rsa.PrivateKey
	merchantPEM        string
	merchantPubPEM     string
	counterpartyPubPEM string
)

func keys(t *testing.T) {
	t.Helper()
	keysOnce.Do(func() {
		var err error
		if merchantKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
		if counterpartyKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
		merchantPEM = privatePEM(merchantKey)
		merchantPubPEM = publicPEM(&merchantKey.PublicKey)
		counterpartyPubPEM = publicPEM(&counterpartyKey.PublicKey)
	})
}

func privatePEM(k *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k)}))
}

func publicPEM(k *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(k)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func testConfig(t *testing.T) trustly.Config {
	keys(t)
	cfg := trustly.DefaultConfig()
	cfg.Username = "merchant"
	cfg.Password = "secret"
	cfg.PrivateKeyPEM = merchantPEM
	cfg.PublicKeyPEM = counterpartyPubPEM
	return cfg
}

// counterparty is a fake API endpoint. It checks the merchant signature of
// every request and answers through reply.
type counterparty struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []payload.Value
	reply    func(req payload.Value) (status int, body any)
}

func newCounterparty(t *testing.T) *counterparty {
	keys(t)
	cp := &counterparty{t: t}
	cp.reply = cp.success(payload.MustFromAny(map[string]any{"orderid": "1187741486", "result": "1"}))
	cp.server = httptest.NewServer(http.HandlerFunc(cp.handle))
	t.Cleanup(cp.server.Close)
	return cp
}

func (cp *counterparty) handle(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	if !assert.NoError(cp.t, err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	req, err := payload.Parse(b)
	if !assert.NoError(cp.t, err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	assert.Equal(cp.t, "application/json", r.Header.Get("Content-Type"))
	assert.Equal(cp.t, trustly.APIPath, r.URL.Path)

	method, _ := req.Lookup("method")
	uuid, _ := req.Lookup("params", "UUID")
	data, _ := req.Lookup("params", "Data")
	sig, _ := req.Lookup("params", "Signature")
	assert.True(cp.t, sign.NewRSAVerifier(&merchantKey.PublicKey).Verify(method.Text(), uuid.Text(), data, sig.Text()),
		"request signature")

	cp.mu.Lock()
	cp.requests = append(cp.requests, req)
	reply := cp.reply
	cp.mu.Unlock()

	status, body := reply(req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (cp *counterparty) lastRequest() payload.Value {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	require.NotEmpty(cp.t, cp.requests)
	return cp.requests[len(cp.requests)-1]
}

func (cp *counterparty) setReply(f func(req payload.Value) (int, any)) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.reply = f
}

// success answers with a result branch signed by the counterparty.
func (cp *counterparty) success(data payload.Value) func(payload.Value) (int, any) {
	return func(req payload.Value) (int, any) {
		method, _ := req.Lookup("method")
		uuid, _ := req.Lookup("params", "UUID")
		return http.StatusOK, signedResult(cp.t, "result", method.Text(), uuid.Text(), data)
	}
}

func signedResult(t *testing.T, branch, method, uuid string, data payload.Value) map[string]any {
	sig, err := sign.NewRSASigner(counterpartyKey).Sign(method, uuid, data)
	assert.NoError(t, err)
	signed := map[string]any{
		"method":    method,
		"uuid":      uuid,
		"signature": sig,
		"data":      data,
	}
	if branch == "error" {
		return map[string]any{
			"version": "1.1",
			"error": map[string]any{
				"name":    "JSONRPCError",
				"code":    620,
				"message": "ERROR_UNKNOWN",
				"error":   signed,
			},
		}
	}
	return map[string]any{"version": "1.1", "result": signed}
}
