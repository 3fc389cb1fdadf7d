package signing

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	pkerrors "github.com/kbukum/paykit/errors"
)

const signatureVersion = "2"

// jwsHeader is the protected header of a detached signature.
type jwsHeader struct {
	Alg       string `json:"alg"`
	Kid       string `json:"kid"`
	TlVersion string `json:"tl_version"`
	TlHeaders string `json:"tl_headers"`
}

// Signer produces detached JWS signatures with a fixed key.
type Signer struct {
	key *Key
}

// NewSigner creates a signer using the given key.
func NewSigner(key *Key) *Signer {
	return &Signer{key: key}
}

// Sign produces a detached ES512 signature over the canonical
// representation of a request. The headers map holds the headers to sign
// with their values taken verbatim; body is the exact bytes that will be
// transmitted.
func (s *Signer) Sign(method, path string, headers map[string]string, body []byte) (string, error) {
	names := sortedHeaderNames(headers)

	header := jwsHeader{
		Alg:       "ES512",
		Kid:       s.key.id,
		TlVersion: signatureVersion,
		TlHeaders: strings.Join(names, ","),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", pkerrors.NewSigningError("encode jws header", err)
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerJSON)
	payloadB64 := base64.RawURLEncoding.EncodeToString(canonicalPayload(method, path, names, headers, body))
	signingInput := headerB64 + "." + payloadB64

	sig, err := jwt.SigningMethodES512.Sign(signingInput, s.key.priv)
	if err != nil {
		return "", pkerrors.NewSigningError("sign request", err)
	}

	// Detached form: the payload is omitted and recomputed by the verifier.
	return headerB64 + ".." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks a detached signature against the canonical representation
// recomputed from the given request parts. The public key is PEM encoded.
func Verify(publicKeyPEM []byte, method, path string, headers map[string]string, body []byte, signature string) error {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return pkerrors.NewSigningError("public key is not valid PEM", nil)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return pkerrors.NewSigningError("parse public key", err)
	}

	parts := strings.Split(signature, ".")
	if len(parts) != 3 || parts[1] != "" {
		return pkerrors.NewSigningError("signature is not a detached jws", nil)
	}
	headerB64, sigB64 := parts[0], parts[2]

	headerJSON, err := base64.RawURLEncoding.DecodeString(headerB64)
	if err != nil {
		return pkerrors.NewSigningError("decode jws header", err)
	}
	var header jwsHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return pkerrors.NewSigningError("decode jws header", err)
	}
	if header.Alg != "ES512" || header.TlVersion != signatureVersion {
		return pkerrors.NewSigningError(
			fmt.Sprintf("unsupported signature scheme %s/%s", header.Alg, header.TlVersion), nil)
	}

	var names []string
	if header.TlHeaders != "" {
		names = strings.Split(header.TlHeaders, ",")
	}
	payloadB64 := base64.RawURLEncoding.EncodeToString(canonicalPayload(method, path, names, headers, body))

	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return pkerrors.NewSigningError("decode signature", err)
	}
	if err := jwt.SigningMethodES512.Verify(headerB64+"."+payloadB64, sig, pub); err != nil {
		return pkerrors.NewSigningError("signature verification failed", err)
	}
	return nil
}

// canonicalPayload builds the deterministic signing input:
//
//	{METHOD} {path}\n
//	{Header-Name}: {value}\n   (once per signed header, in tl_headers order)
//	{body}
func canonicalPayload(method, path string, names []string, headers map[string]string, body []byte) []byte {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteByte('\n')
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(headers[name])
		b.WriteByte('\n')
	}
	return append([]byte(b.String()), body...)
}

func sortedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
