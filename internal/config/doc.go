// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package config loads the process configuration for Schoolbook.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. A .env file in the working directory
(or at DOTENV_PATH) is merged into the environment before the env layer is
read; variables already set in the environment win.

# Sections

  - store: BadgerDB location and tuning (STORE_PATH, STORE_IN_MEMORY, ...)
  - sync: remote endpoint bootstrap, HTTP timeout, circuit breaker tuning
  - server: local HTTP API bind address, CORS origins, rate limiting
  - security: CREDENTIAL_SECRET for sealing stored database credentials
  - school: bootstrap values for the stored school configuration
  - logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Process config vs stored config

The remote endpoint URL used by push and pull is read from the store's
config slot on every sync, so it can be changed at runtime through the API.
SYNC_ENDPOINT_URL and the school section only seed that slot when the store
is empty.

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	db, err := store.OpenBadger(cfg.Store.StoreSettings())

# Credential Encryption

CredentialEncryptor implements AES-256-GCM with an HKDF-SHA256 derived key:

	enc, err := config.NewCredentialEncryptor(cfg.Security.CredentialSecret)
	sealed, err := enc.Encrypt("db-password")
	plain, err := enc.Decrypt(sealed)
*/
package config
