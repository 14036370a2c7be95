package server

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	documentIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"
	documentIDLength   = 9
)

// NewDocumentID generates a short, URL-safe document id. Collisions are
// statistically negligible at this length for the expected document count.
func NewDocumentID() (string, error) {
	return gonanoid.Generate(documentIDAlphabet, documentIDLength)
}
