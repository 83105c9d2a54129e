package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

var errNoPEMBlock = errors.New("no PEM block found")

type JWTConfig struct {
	AccessTokenDuration time.Duration
	PrivateKey          *rsa.PrivateKey
	PublicKey           *rsa.PublicKey
	Issuer              string
}

// CanIssue reports whether a signing key is configured
func (c *JWTConfig) CanIssue() bool {
	return c.PrivateKey != nil
}

// loadKeys reads base64-encoded PEM keys from JWT_PUBLIC_KEY and, optionally,
// JWT_PRIVATE_KEY. Without a private key the API only verifies tokens. Outside
// production a missing public key is replaced by a throwaway pair.
func (c *JWTConfig) loadKeys(production bool) error {
	publicB64 := os.Getenv("JWT_PUBLIC_KEY")
	privateB64 := os.Getenv("JWT_PRIVATE_KEY")

	if publicB64 == "" {
		if production {
			return errors.New("JWT_PUBLIC_KEY must be set in production")
		}
		slog.Warn("JWT_PUBLIC_KEY not set, generating a throwaway RSA keypair")
		private, public, err := GenerateRSAKeyPair()
		if err != nil {
			return err
		}
		c.PrivateKey, c.PublicKey = private, public
		return nil
	}

	public, err := decodeKey("JWT_PUBLIC_KEY", publicB64, parsePublicKey)
	if err != nil {
		return err
	}
	c.PublicKey = public

	if privateB64 == "" {
		return nil
	}
	private, err := decodeKey("JWT_PRIVATE_KEY", privateB64, parsePrivateKey)
	if err != nil {
		return err
	}
	if !private.PublicKey.Equal(public) {
		return errors.New("JWT_PRIVATE_KEY does not match JWT_PUBLIC_KEY")
	}
	c.PrivateKey = private
	return nil
}

// GenerateRSAKeyPair creates a 2048-bit keypair
func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return privateKey, &privateKey.PublicKey, nil
}

func decodeKey[K any](name, encoded string, parse func(*pem.Block) (K, error)) (K, error) {
	var zero K

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return zero, fmt.Errorf("failed to parse %s: %w", name, errNoPEMBlock)
	}
	key, err := parse(block)
	if err != nil {
		return zero, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return key, nil
}

func parsePrivateKey(block *pem.Block) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	return rsaKey, nil
}

func parsePublicKey(block *pem.Block) (*rsa.PublicKey, error) {
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return rsaKey, nil
}
