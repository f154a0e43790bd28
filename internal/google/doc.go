// Package google implements the OAuth token-acquisition strategies used to
// authenticate Google Ads REST calls.
//
// Three interchangeable strategies implement the TokenProvider interface:
//
//   - FileTokenProvider: installed-app flow. Tokens are acquired via an
//     authorization code (browser consent) and cached per account in the
//     user cache directory.
//   - RefreshTokenProvider: mounted-secret flow for deployed instances.
//     A client-secret JSON and a refresh-token JSON are mounted as files
//     (Cloud Run style); access tokens are refreshed on demand and
//     persisted best-effort to a writable path.
//   - RelayTokenProvider: hosted web-OAuth relay. The server asks a relay
//     service to start an OAuth flow, hands the user the authorization
//     URL, and polls the relay until the token is ready.
//
// All strategies treat a token as expired when fewer than five minutes
// remain before its expiry, so callers never hand out a token that dies
// mid-request.
package google
