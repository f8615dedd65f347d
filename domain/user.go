// Package domain contains core concepts of the messaging system.
// This file defines User identities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is a registered identity. Usernames are unique, case-sensitive
// and immutable once created. The credential is never stored in clear,
// only its one-way derivation.
type User struct {
	Username       string    `json:"username"`
	CredentialHash string    `json:"credential_hash"`
	Seq            uint64    `json:"seq"`
	CreatedAt      time.Time `json:"created_at"`
}
