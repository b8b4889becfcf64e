package sign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sebamiro/trustly/payload"
)

// Signer produces signatures over (method, uuid, data).
type Signer interface {
	Sign(method, uuid string, data payload.Value) (string, error)
}

// Verifier checks signatures over (method, uuid, data).
type Verifier interface {
	Verify(method, uuid string, data payload.Value, signature string) bool
}

// Ensure our types implement the interfaces at compile time.
var _ Signer = (*RSASigner)(nil)
var _ Verifier = (*RSAVerifier)(nil)

// Message returns the bytes covered by a signature.
func Message(method, uuid string, data payload.Value) []byte {
	var sb strings.Builder
	sb.WriteString(method)
	sb.WriteString(uuid)
	sb.WriteString(payload.Serialize(data))
	return []byte(sb.String())
}

// RSASigner signs with an RSA private key.
type RSASigner struct {
	key *rsa.PrivateKey
}

// NewRSASigner returns a Signer backed by key.
func NewRSASigner(key *rsa.PrivateKey) *RSASigner {
	return &RSASigner{key: key}
}

// Sign returns the base64 RSA-SHA1 signature of Message(method, uuid, data).
func (s *RSASigner) Sign(method, uuid string, data payload.Value) (string, error) {
	if s == nil || s.key == nil {
		return "", fmt.Errorf("no private key")
	}
	digest := sha1.Sum(Message(method, uuid, data))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA1, digest[:])
	if err != nil {
		return "", fmt.Errorf("could not sign message: %w", err)
	}
	return strings.TrimRight(base64.StdEncoding.EncodeToString(sig), " \t\r\n"), nil
}

// Public returns a Verifier for the signer's public half. Without a key
// the Verifier rejects every signature.
func (s *RSASigner) Public() *RSAVerifier {
	if s == nil || s.key == nil {
		return NewRSAVerifier(nil)
	}
	return NewRSAVerifier(&s.key.PublicKey)
}

// RSAVerifier verifies with an RSA public key.
type RSAVerifier struct {
	key *rsa.PublicKey
}

// NewRSAVerifier returns a Verifier backed by key.
func NewRSAVerifier(key *rsa.PublicKey) *RSAVerifier {
	return &RSAVerifier{key: key}
}

// Verify reports whether signature is a valid RSA-SHA1 signature of
// Message(method, uuid, data). Line breaks inside the base64 text are
// ignored. Any decoding problem yields false.
func (v *RSAVerifier) Verify(method, uuid string, data payload.Value, signature string) bool {
	if v == nil || v.key == nil {
		return false
	}
	raw, err := decodeSignature(signature)
	if err != nil || len(raw) == 0 {
		return false
	}
	digest := sha1.Sum(Message(method, uuid, data))
	return rsa.VerifyPKCS1v15(v.key, crypto.SHA1, digest[:], raw) == nil
}

func decodeSignature(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(s)
}
