// Package github implements the repository connector for GitHub.
//
// The connector lists a repository's tree and fetches file blobs so the
// session can open and render them. It satisfies both driven.TreeProvider
// and driven.FileFetcher.
//
// # Architecture
//
//   - Connector: implements the driven ports and tracks lifecycle
//   - Client: handles GitHub API communication with rate limiting
//   - RateLimiter: proactive throttling plus reactive header tracking
//
// # Authentication
//
// Requests use a Personal Access Token when the TokenProvider returns one
// (GITHUB_TOKEN or github.token in the config file) and are anonymous
// otherwise. Authenticated requests get 5,000 API calls per hour; anonymous
// requests get 60, which is enough for browsing small public repositories.
//
// # GitHub Enterprise
//
// Set github.api_url to the Enterprise API root, e.g.
// https://ghe.example.com/api/v3/.
//
// # Blobs
//
// Tree entries carry the API URL of their blob. GetFile fetches that URL
// and returns the blob's base64 content unchanged; decoding happens in the
// content loader. Blob URLs are content addressed, so payloads are safe to
// cache indefinitely.
package github
