// Package auth provides TokenProvider implementations for the GitHub client.
//
// Providers:
//   - PATProvider: personal access token from GITHUB_TOKEN or the config file
//   - NullTokenProvider: anonymous access
package auth
