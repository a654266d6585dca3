package crypto

import (
	"errors"
	"fmt"
	"os"
)

// envKeyring reads the key from INVOICER_DB_KEY. It cannot store keys.
type envKeyring struct{}

func (envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvKey)
	}
	return key, nil
}

func (envKeyring) SetKey(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return fmt.Errorf("cannot store key: export %s instead", EnvKey)
}

func (envKeyring) DeleteKey() error {
	return errors.New("cannot delete key: unset " + EnvKey + " manually")
}

func (envKeyring) IsAvailable() bool {
	return os.Getenv(EnvKey) != ""
}
