package models

import "time"

// Share is a time-boxed, PIN-gated access grant to one document. Only the
// PIN's bcrypt hash is stored; the plaintext PIN is returned to the issuer
// once and is not recoverable afterwards.
type Share struct {
	Token      string
	DocumentID string
	PinHash    string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
