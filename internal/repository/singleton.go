// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"fmt"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// CredentialCipher encrypts reserved credentials at rest.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ConfigRepo reads and writes the SystemConfig singleton as a whole.
type ConfigRepo struct {
	env    *Env
	cipher CredentialCipher
}

// NewConfigRepo builds the config repository. cipher may be nil, in which
// case credentials are stored as given.
func NewConfigRepo(env *Env, cipher CredentialCipher) *ConfigRepo {
	return &ConfigRepo{env: env, cipher: cipher}
}

// Get returns the stored configuration, or the zero value (offline) when
// none has been saved. Credentials that fail to decrypt are blanked.
func (r *ConfigRepo) Get() models.SystemConfig {
	cfg, ok := store.ReadObject[models.SystemConfig](r.env.store, store.SlotConfig)
	if !ok {
		return models.SystemConfig{}
	}
	if r.cipher == nil {
		return cfg
	}
	for _, field := range []*string{&cfg.DBUser, &cfg.DBPassword} {
		if *field == "" {
			continue
		}
		plain, err := r.cipher.Decrypt(*field)
		if err != nil {
			logging.Warn().Err(err).Msg("Stored credential could not be decrypted, ignoring it")
			*field = ""
			continue
		}
		*field = plain
	}
	return cfg
}

// Exists reports whether a configuration has been saved.
func (r *ConfigRepo) Exists() bool {
	_, ok := store.ReadObject[models.SystemConfig](r.env.store, store.SlotConfig)
	return ok
}

// Endpoint returns the configured remote endpoint, or "" in offline mode.
func (r *ConfigRepo) Endpoint() string {
	cfg, ok := store.ReadObject[models.SystemConfig](r.env.store, store.SlotConfig)
	if !ok {
		return ""
	}
	return cfg.Endpoint()
}

// Put replaces the configuration. Changing the endpoint takes effect for
// the next push or pull.
func (r *ConfigRepo) Put(cfg models.SystemConfig) error {
	cfg.AppsScriptURL = cfg.Endpoint()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if r.cipher != nil {
		for _, field := range []*string{&cfg.DBUser, &cfg.DBPassword} {
			if *field == "" {
				continue
			}
			enc, err := r.cipher.Encrypt(*field)
			if err != nil {
				return fmt.Errorf("encrypt credential: %w", err)
			}
			*field = enc
		}
	}

	r.env.mu.Lock()
	err := store.WriteObject(r.env.store, store.SlotConfig, cfg)
	r.env.mu.Unlock()
	if err != nil {
		return err
	}

	r.env.changed(true)
	return nil
}

// SessionRepo holds the signed-in user. It is never pushed.
type SessionRepo struct {
	env *Env
}

// NewSessionRepo builds the session repository.
func NewSessionRepo(env *Env) *SessionRepo {
	return &SessionRepo{env: env}
}

// Current returns the active session.
func (r *SessionRepo) Current() (models.Session, bool) {
	return store.ReadObject[models.Session](r.env.store, store.SlotSession)
}

// Set replaces the active session.
func (r *SessionRepo) Set(s models.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.env.mu.Lock()
	err := store.WriteObject(r.env.store, store.SlotSession, s)
	r.env.mu.Unlock()
	if err != nil {
		return err
	}

	r.env.changed(false)
	return nil
}

// Clear signs the current user out. Clearing an empty session is a no-op.
func (r *SessionRepo) Clear() error {
	r.env.mu.Lock()
	if _, ok := store.ReadObject[models.Session](r.env.store, store.SlotSession); !ok {
		r.env.mu.Unlock()
		return nil
	}
	err := r.env.store.Delete(store.SlotSession)
	r.env.mu.Unlock()
	if err != nil {
		return err
	}

	r.env.changed(false)
	return nil
}
