// Package google resolves credentials into authenticated sessions and builds
// cached Google API clients on top of them.
//
// A Resolver turns a CredentialSpec (a service-account key or an OAuth client
// file) into a Session, running the interactive OAuth flow through an
// Authorizer when no token is cached. A Registry maps a session and an API
// (DriveV3, SheetsV4, SlidesV1) to a ServiceClient, constructing each handle
// once. The service wrappers in internal/drive, internal/sheets and
// internal/slides consume a ClientSource, normally a *Base from Registry.For.
//
// Every failure surfaced by this package or the wrappers is one of
// CredentialError, AuthenticationError, ClientConstructionError,
// ValidationError or RemoteAPIError.
package google
