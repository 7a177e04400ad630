// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morganforge/wirechat/internal/util"
)

// =============================================================================
// CREDENTIAL STORE INTERFACE
// =============================================================================

// ErrNoCredential is returned by Get when no credential has been stored.
var ErrNoCredential = errors.New("no credential stored")

// CredentialStore holds the caller's API credential. Set persists the
// value so Get returns it on any future process start; Has gates whether a
// session may start at all.
type CredentialStore interface {
	Set(credential string) error
	Get() (string, error)
	Has() bool
	Delete() error
}

// =============================================================================
// FILE-BACKED STORE
// =============================================================================

const (
	credentialFile = "credential.enc"
	masterKeyFile  = "master.key"
)

// FileCredentialStore is the file-backed CredentialStore. The sealed
// credential and the master key live side by side under the data
// directory, both with owner-only permissions.
type FileCredentialStore struct {
	credPath string
	keyPath  string
}

// NewFileCredentialStore creates a store rooted at the given data
// directory.
func NewFileCredentialStore(dir string) (*FileCredentialStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	return &FileCredentialStore{
		credPath: filepath.Join(dir, credentialFile),
		keyPath:  filepath.Join(dir, masterKeyFile),
	}, nil
}

// Set seals the credential and persists it. The write is atomic; callers
// never observe a partially written credential.
func (s *FileCredentialStore) Set(credential string) error {
	key, err := s.loadOrCreateMasterKey()
	if err != nil {
		return err
	}
	defer ZeroBytes(key)

	sealed, err := seal(key, strings.TrimSpace(credential))
	if err != nil {
		return fmt.Errorf("failed to seal credential: %w", err)
	}

	if err := util.AtomicWriteFile(s.credPath, []byte(sealed), 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, or ErrNoCredential if absent.
func (s *FileCredentialStore) Get() (string, error) {
	data, err := os.ReadFile(s.credPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	key, err := s.loadMasterKey()
	if err != nil {
		return "", err
	}
	defer ZeroBytes(key)

	credential, err := open(key, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to unseal credential: %w", err)
	}
	return credential, nil
}

// Has reports whether a credential is stored.
func (s *FileCredentialStore) Has() bool {
	_, err := os.Stat(s.credPath)
	return err == nil
}

// Delete removes the stored credential. The master key is kept so a new
// credential can be sealed without rotating it.
func (s *FileCredentialStore) Delete() error {
	if err := os.Remove(s.credPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// =============================================================================
// MASTER KEY
// =============================================================================

func (s *FileCredentialStore) loadMasterKey() ([]byte, error) {
	key, err := os.ReadFile(s.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read master key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("master key has wrong size: %d", len(key))
	}
	return key, nil
}

func (s *FileCredentialStore) loadOrCreateMasterKey() ([]byte, error) {
	if key, err := os.ReadFile(s.keyPath); err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("master key has wrong size: %d", len(key))
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master key: %w", err)
	}

	key, err := randomBytes(KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	if err := util.AtomicWriteFile(s.keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write master key: %w", err)
	}
	return key, nil
}
