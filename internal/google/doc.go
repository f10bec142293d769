// Package google obtains and caches the OAuth2 credential used to call the
// Google Calendar API.
//
// The Manager decides between three paths on every run: return a valid cached
// credential, refresh an expired one that carries a refresh token, or run the
// interactive browser-based authorization. The cache lives behind the
// CredentialStore interface (FileStore in production) and the interactive step
// behind the Authorizer interface (LocalServerAuthorizer in production), so the
// decision logic can be tested without a filesystem or a browser.
//
// Cached credentials use the Google "authorized_user" JSON layout, so the
// file can be reused by other Google client libraries.
package google
