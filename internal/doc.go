// Package internal provides the core types and implementation for the dispatch
// package.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/dispatch" instead, which re-exports the public API.
//
// # Core Types
//
//   - Attributes: Ordered multimap parsed from ":Key(value)" strings
//   - Action: A routable handler with its private path, attributes and roles
//   - Registry: Indexes actions by private path and by (name, namespace)
//   - DispatchType: Matching strategy; Path, Chained and Regex are built in
//   - Dispatcher: Resolves paths to actions, forwards, builds URIs
//   - Context: One request; carries the stash, args, captures and errors
//   - App: chi-based HTTP front end with health endpoints and graceful shutdown
//
// # Setup
//
// Dispatcher.Setup runs once. It calls every controller's Routes, parses the
// attribute strings, offers each public action to every strategy, lets the
// strategies build their tables and resolves lifecycle hooks and roles.
// After Setup the dispatcher is read-only and safe for concurrent use.
//
// # Matching
//
// PrepareAction asks the strategies about the full path first. When none
// matches exactly, the last segment is moved to the front of the args and
// the shorter prefix is tried, down to the empty path. Strategies are tried
// in precedence order: normal before low, then by name.
//
// # Lifecycle
//
// Dispatch runs Begin, every Auto root first, the action and End. The first
// failure skips the remaining steps except End. End never changes the
// outcome. Errors returned by actions are recorded on the Context; ErrAbort
// fails the step without recording anything.
package internal
