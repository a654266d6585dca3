package crypto

import (
	"errors"
	"fmt"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "invoicer"
	KeyName     = "db-encryption-key"

	// EnvKey overrides the stored key when set
	EnvKey = "INVOICER_DB_KEY"
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// NewKeyring returns a keyring that prefers the INVOICER_DB_KEY environment
// variable and falls back to the OS credential store.
func NewKeyring() Keyring {
	return &chainKeyring{env: envKeyring{}, system: systemKeyring{}}
}

type chainKeyring struct {
	env    Keyring
	system Keyring
}

func (k *chainKeyring) GetKey() (string, error) {
	if k.env.IsAvailable() {
		return k.env.GetKey()
	}
	return k.system.GetKey()
}

func (k *chainKeyring) SetKey(password string) error {
	if err := k.system.SetKey(password); err != nil {
		return fmt.Errorf("%w (set %s to supply the key instead)", err, EnvKey)
	}
	return nil
}

func (k *chainKeyring) DeleteKey() error {
	return k.system.DeleteKey()
}

func (k *chainKeyring) IsAvailable() bool {
	return k.env.IsAvailable() || k.system.IsAvailable()
}
