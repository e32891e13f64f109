// Package app contains the long-running application: the HTTP playground
// with its health and metrics endpoints, the scheduled maintenance job, the
// config file watcher and the optional evaluation journal. It is decoupled
// from any specific entrypoint; the CLI constructs an App and calls Serve.
package app
