// Package google manages the access token used for Google API calls.
//
// A Holder stores the token supplied at runtime (the x-access-token header or
// POST /set-token) together with the Client built from it. Tool calls resolve
// their Client through the Holder, falling back to the token the process was
// started with.
//
// The package also mints tokens for the offline helpers of the CLI: from a
// service account key, or from an OAuth client and refresh token. The served
// process never refreshes tokens itself.
package google
