package sign

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebamiro/trustly/payload"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = k
	})
	return testKey
}

func testData() payload.Value {
	return payload.MustFromAny(map[string]any{
		"OrderId":  "12345",
		"Amount":   "100.00",
		"Currency": "EUR",
		"Attributes": map[string]any{
			"Locale": "sv_SE",
		},
	})
}

func TestMessage(t *testing.T) {
	msg := Message("Refund", "258a2184-2842-b485-25ca-293525152425", testData())
	assert.Equal(t,
		"Refund258a2184-2842-b485-25ca-293525152425Amount100.00AttributesLocalesv_SECurrencyEUROrderId12345",
		string(msg))

	assert.Equal(t, "", string(Message("", "", payload.Null())))
}

func TestSignVerify(t *testing.T) {
	key := rsaKey(t)
	signer := NewRSASigner(key)
	verifier := signer.Public()

	sig, err := signer.Sign("Refund", "u-1", testData())
	require.NoError(t, err)
	assert.NotContains(t, sig, "\n")
	assert.Equal(t, strings.TrimSpace(sig), sig)

	t.Run("Valid signature verifies", func(t *testing.T) {
		assert.True(t, verifier.Verify("Refund", "u-1", testData(), sig))
	})

	t.Run("Signature is stable across insertion order", func(t *testing.T) {
		reordered, err := payload.Parse([]byte(
			`{"Attributes":{"Locale":"sv_SE"},"Currency":"EUR","OrderId":"12345","Amount":"100.00"}`))
		require.NoError(t, err)
		assert.True(t, verifier.Verify("Refund", "u-1", reordered, sig))
	})

	t.Run("Tampering fails verification", func(t *testing.T) {
		tampered := testData().With("Amount", payload.String("100.01"))
		tests := []struct {
			name   string
			method string
			uuid   string
			data   payload.Value
		}{
			{"Method", "Refunds", "u-1", testData()},
			{"UUID", "Refund", "u-2", testData()},
			{"Data", "Refund", "u-1", tampered},
			{"Missing method", "", "u-1", testData()},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				assert.False(t, verifier.Verify(test.method, test.uuid, test.data, sig))
			})
		}
	})

	t.Run("Line-wrapped base64 verifies", func(t *testing.T) {
		var wrapped strings.Builder
		for i := 0; i < len(sig); i += 60 {
			end := min(i+60, len(sig))
			wrapped.WriteString(sig[i:end])
			wrapped.WriteString("\n")
		}
		assert.True(t, verifier.Verify("Refund", "u-1", testData(), wrapped.String()))
	})

	t.Run("Garbage signatures are rejected", func(t *testing.T) {
		for _, s := range []string{"", "not base64!", base64.StdEncoding.EncodeToString([]byte("short"))} {
			assert.False(t, verifier.Verify("Refund", "u-1", testData(), s))
		}
	})

	t.Run("Nil key", func(t *testing.T) {
		_, err := NewRSASigner(nil).Sign("Refund", "u-1", testData())
		assert.Error(t, err)
		assert.False(t, NewRSAVerifier(nil).Verify("Refund", "u-1", testData(), sig))
		assert.False(t, NewRSASigner(nil).Public().Verify("Refund", "u-1", testData(), sig))

		var none *RSASigner
		assert.False(t, none.Public().Verify("Refund", "u-1", testData(), sig))
	})
}

func TestParseKeys(t *testing.T) {
	key := rsaKey(t)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkix, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	t.Run("Private key forms", func(t *testing.T) {
		for _, block := range []*pem.Block{
			{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)},
			{Type: "PRIVATE KEY", Bytes: pkcs8},
		} {
			parsed, err := ParsePrivateKey(pem.EncodeToMemory(block))
			require.NoError(t, err, block.Type)
			assert.True(t, key.Equal(parsed))
		}
	})

	t.Run("Public key forms", func(t *testing.T) {
		for _, block := range []*pem.Block{
			{Type: "PUBLIC KEY", Bytes: pkix},
			{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)},
		} {
			parsed, err := ParsePublicKey(pem.EncodeToMemory(block))
			require.NoError(t, err, block.Type)
			assert.True(t, key.PublicKey.Equal(parsed))
		}
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := ParsePrivateKey([]byte("not a key"))
		assert.Error(t, err)
		_, err = ParsePublicKey(nil)
		assert.Error(t, err)
		_, err = ParsePrivateKey(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}}))
		assert.Error(t, err)
	})

	t.Run("Non-RSA keys are rejected", func(t *testing.T) {
		ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(ec)
		require.NoError(t, err)
		_, err = ParsePrivateKey(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
		assert.ErrorContains(t, err, "not RSA")
	})
}
