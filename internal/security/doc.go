// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security stores the API credential at rest.
//
// The credential is sealed with AES-256-GCM under a key derived via
// PBKDF2-SHA-256 from a machine-local random master key. The package does
// no validation of credential contents; an invalid credential surfaces
// only as a request failure.
package security
