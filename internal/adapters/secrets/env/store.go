// Package env resolves secrets from process environment variables. It is
// read-only: the surrounding deployment injects credentials, guestpass never
// writes them back.
package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kvist-dev/guestpass/internal/ports"
)

// ErrReadOnly is returned for Put/Delete so a chained fallback store can take
// over mutations.
var ErrReadOnly = errors.New("environment secret store is read-only")

type Store struct {
	prefix string
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	return &Store{prefix: prefix, lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := s.envName(key)
	if err != nil {
		return "", err
	}

	value, ok := s.lookup(name)
	if !ok || value == "" {
		return "", fmt.Errorf("environment secret %s not set", name)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return ErrReadOnly
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return ErrReadOnly
}

// envName maps a secret key like "platform/api-key" to PREFIX_PLATFORM_API_KEY.
func (s *Store) envName(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("secret key is empty")
	}

	mapped := strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(trimmed)
	mapped = strings.ToUpper(mapped)
	if s.prefix == "" {
		return mapped, nil
	}

	return s.prefix + "_" + mapped, nil
}
