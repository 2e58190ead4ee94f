// Package api holds the HTTP handlers for task submission and status
// queries. Handlers translate between the wire format and the service
// layer; they hold no task state of their own.
package api
