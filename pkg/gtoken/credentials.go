package gtoken

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pkcs12"
)

// googleP12Password is the fixed passphrase Google uses for the PKCS#12
// service account key files it issues.
const googleP12Password = "notasecret"

// Credentials is the key material resolved from a credential file.
type Credentials struct {
	// PrivateKey is the PEM-encoded private key. Always set.
	PrivateKey string

	// ClientEmail is the service account email, when the file carries
	// one (JSON key files only).
	ClientEmail string
}

// resolveCredentials reads a credential file and extracts the private key
// and, where available, the service account email. The file kind is
// classified by extension: .json, .pem and .p12 are supported.
func resolveCredentials(path string) (*Credentials, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return resolveJSONKey(path)
	case ".pem":
		return resolvePEMKey(path)
	case ".p12":
		return resolveP12Key(path)
	default:
		return nil, fmt.Errorf("%w: %q (supported: .json, .pem, .p12)",
			ErrUnknownCertificateType, filepath.Ext(path))
	}
}

func resolveJSONKey(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	var keyFile struct {
		PrivateKey  string `json:"private_key"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(data, &keyFile); err != nil {
		return nil, fmt.Errorf("%w: malformed key file: %v", ErrMissingCredentials, err)
	}

	if keyFile.PrivateKey == "" {
		return nil, fmt.Errorf("%w: private_key missing from key file", ErrMissingCredentials)
	}
	if keyFile.ClientEmail == "" {
		return nil, fmt.Errorf("%w: client_email missing from key file", ErrMissingCredentials)
	}

	return &Credentials{
		PrivateKey:  keyFile.PrivateKey,
		ClientEmail: keyFile.ClientEmail,
	}, nil
}

func resolvePEMKey(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	// The whole file is the key; the caller must supply the issuer.
	return &Credentials{PrivateKey: string(data)}, nil
}

func resolveP12Key(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	key, err := decodeP12()(data, googleP12Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	return &Credentials{PrivateKey: key}, nil
}

// p12Decoder converts PKCS#12 key material into a PEM private key.
type p12Decoder func(data []byte, password string) (string, error)

var (
	p12DecoderOnce sync.Once
	p12Decode      p12Decoder
)

// decodeP12 returns the process-wide PKCS#12 decoder, initializing it on
// first use so callers that never touch .p12 files pay no cost.
func decodeP12() p12Decoder {
	p12DecoderOnce.Do(func() {
		p12Decode = func(data []byte, password string) (string, error) {
			key, _, err := pkcs12.Decode(data, password)
			if err != nil {
				return "", err
			}

			der, err := x509.MarshalPKCS8PrivateKey(key)
			if err != nil {
				return "", err
			}

			block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
			return string(pem.EncodeToMemory(block)), nil
		}
	})
	return p12Decode
}
