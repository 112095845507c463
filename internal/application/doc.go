// Package application provides application initialization and dependency wiring.
// It loads the route table, builds the storage, metrics, handlers, routers and
// HTTP server, and exposes route reloading, keeping the main package focused
// on CLI parsing and signal handling.
package application
