// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package device holds a terminal's credentials and decides its mode.

# Storage

Each terminal keeps a small key/value store. OpenSQLiteStore persists it in
a SQLite file (modernc.org/sqlite); MemoryStore is for tests and throwaway
sessions. Keys:

  - admin_auth: "true" once an operator has logged in here
  - kiosk_secret: the kiosk token this terminal presents
  - pending_request: the request staged before a checkout redirect

# Modes

Resolver.Resolve reads the store once and reports Operator and Kiosk flags.
Under PolicyStrict the stored kiosk token must match the configured secret;
under PolicyPresence any stored token is enough. There is no logout: clear
the store file to reset a terminal.
*/
package device
