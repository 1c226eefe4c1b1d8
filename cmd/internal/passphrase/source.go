package passphrase

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Source resolves a keystore passphrase once, from an environment variable
// when it is set and from a terminal prompt otherwise.
type Source struct {
	envVar string

	once  sync.Once
	value string
	err   error
}

func NewSource(envVar string) *Source {
	return &Source{envVar: strings.TrimSpace(envVar)}
}

// Get returns the cached passphrase, resolving it on first use. Blank
// passphrases are rejected.
func (s *Source) Get() (string, error) {
	s.once.Do(func() {
		value, found, err := s.fromEnv()
		if !found && err == nil {
			value, err = s.fromTerminal()
		}
		if err == nil && strings.TrimSpace(value) == "" {
			err = errors.New("keystore passphrase cannot be empty")
		}
		s.value, s.err = value, err
	})
	return s.value, s.err
}

func (s *Source) fromEnv() (string, bool, error) {
	if s.envVar == "" {
		return "", false, nil
	}
	value, ok := os.LookupEnv(s.envVar)
	if !ok {
		return "", false, nil
	}
	if strings.TrimSpace(value) == "" {
		return "", true, fmt.Errorf("%s is set but empty", s.envVar)
	}
	return value, true, nil
}

func (s *Source) fromTerminal() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		if s.envVar != "" {
			return "", fmt.Errorf("keystore passphrase required; set %s or run interactively", s.envVar)
		}
		return "", errors.New("keystore passphrase required and no terminal available")
	}
	fmt.Fprint(os.Stderr, "Keystore passphrase: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(raw), nil
}
