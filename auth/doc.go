// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller tokens and request-scoped caller identity.

# Caller Tokens

A caller token binds an identity to the server's token salt with HMAC-SHA256:

	token := auth.IssueToken("alice", salt)
	identity, err := auth.ParseToken(token, salt)

Tokens are sent as "Authorization: Bearer <token>". The encoded form is
base64url(identity) "." base64url(signature), without padding.

ParseToken returns:

  - ErrInvalidToken: malformed token
  - ErrInvalidSignature: signature does not match the identity and salt

# Caller Context

The authentication middleware attaches the verified identity to the request
context; ContextIdentity hands it to the engine:

	ctx = auth.WithCaller(ctx, identity)
	reg := engine.NewRegistry(store, clock, auth.ContextIdentity{})

A missing identity surfaces as engine.ErrUnauthenticated.
*/
package auth
