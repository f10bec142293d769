// Package config holds the explicit configuration for a calsetup run:
// where the OAuth client secrets and the cached credential live, which
// local port receives the authorization redirect, which scopes are requested
// and which calendar the demo event targets.
//
// Values come from an optional TOML file, found either at an explicit path
// or as calsetup/config.toml in the XDG config directories. Missing keys keep
// their defaults, which match the historical fixed values of the setup
// script (credentials.json, token.json, port 8000, primary calendar).
package config
