// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the script lifecycle (load, validate, run,
// report), decoupled from any specific entrypoint like a CLI.
package app
