// Package sign implements the message signature scheme of the protocol.
//
// A signature covers the concatenation of the method name, the message
// UUID and the canonical serialization of the message data:
//
//	method ++ uuid ++ payload.Serialize(data)
//
// The concatenation is signed with RSA PKCS #1 v1.5 over a SHA-1 digest and
// transported as standard base64.
//
// Usage
//
//	key, err := sign.ParsePrivateKey(pemBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	signer := sign.NewRSASigner(key)
//	sig, err := signer.Sign("Deposit", uuid, data)
//
//	verifier := sign.NewRSAVerifier(counterpartyKey)
//	ok := verifier.Verify("Deposit", uuid, data, sig)
package sign
