package store

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// Codec reversibly encodes editor content before it reaches the durable
// store: gzip first, then AES-256-GCM when an encryption key is configured,
// then base64 so the payload stays text-safe.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a codec. An empty key disables encryption; otherwise the
// AES key is derived from the key string with SHA-256.
func NewCodec(key string) (*Codec, error) {
	c := &Codec{}
	if key == "" {
		return c, nil
	}

	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("failed to derive cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	c.aead = aead

	return c, nil
}

// Encode compresses, optionally encrypts and base64-encodes content.
func (c *Codec) Encode(content string) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		return "", fmt.Errorf("failed to compress content: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish compression: %w", err)
	}

	data := buf.Bytes()
	if c.aead != nil {
		nonce := make([]byte, c.aead.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return "", fmt.Errorf("failed to generate nonce: %w", err)
		}
		// Nonce is prepended so Decode can recover it.
		data = c.aead.Seal(nonce, nonce, data, nil)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode reverses Encode. Callers that need tolerance for legacy plain-text
// rows should fall back to the raw payload when an error is returned.
func (c *Codec) Decode(payload string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	if c.aead != nil {
		if len(data) < c.aead.NonceSize() {
			return "", fmt.Errorf("payload shorter than nonce")
		}
		nonce, sealed := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
		data, err = c.aead.Open(nil, nonce, sealed, nil)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt payload: %w", err)
		}
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer zr.Close()

	content, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("failed to decompress content: %w", err)
	}

	return string(content), nil
}
