// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - FileFetcher: Retrieves base64 file payloads by opaque URL
//   - TreeProvider: Lists a repository's file tree
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BlobCache: Persists fetched payloads. Without it every open fetches.
//   - TokenProvider: Authenticates API calls. Without it requests are anonymous.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
