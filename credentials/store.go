// Package credentials owns the persisted session state of the terminal:
// the access/refresh token pair and the last-known operator identity.
// It does no network or validation work; updates are all-or-nothing.
package credentials

import (
	"errors"

	"apexpos/model"
)

// ErrCorrupt is returned when the persisted credential file cannot be
// decoded (or decrypted) as written by a previous Save.
var ErrCorrupt = errors.New("credential store corrupt")

// Pair is the active token pair. AccessToken authorizes API calls;
// RefreshToken obtains a replacement access token when it expires.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store persists the credential pair and the last-known user. Save and
// Clear are atomic: a reader sees either the previous state or the new
// one, never a half-written pair.
type Store interface {
	Save(p Pair) error
	Read() (Pair, bool, error)
	Clear() error

	SaveUser(u model.User) error
	ReadUser() (model.User, bool, error)
}
