// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The session, loader and decode worker form the content pipeline:
// SessionService starts loads on goroutines, ContentLoader fetches and
// decodes through a DecodeWorker it owns, and completions are reconciled
// against current session state by document path.
//
// Services are pure Go with no CGO dependencies.
package services
