// Package cli builds the exprbridge command tree. It translates flags into
// configuration, dispatches to the engine, the playground server, the REPL
// and the wasm host, and maps failures to process exit codes.
package cli
