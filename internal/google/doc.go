// Package google provides OAuth2 authentication for the Google APIs used by
// handoff (Calendar, Drive, Docs and Gmail).
//
// Two credential sources are supported through the TokenProvider interface:
//   - FileTokenProvider: a user token obtained once with "handoff auth" and
//     cached per account name in the user cache directory
//   - ServiceAccountProvider: a service account key with domain-wide
//     delegation, impersonating a Workspace user (for unattended deployments)
//
// The OAuth client used for user tokens is read from a client secret JSON
// file (HANDOFF_GOOGLE_CREDENTIALS) or from HANDOFF_GOOGLE_CLIENT_ID and
// HANDOFF_GOOGLE_CLIENT_SECRET.
package google
