// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package invitations answers invitations (accepted, declined, maybe) and
// keeps a per-invitation error and in-flight flag for the views.
package invitations
