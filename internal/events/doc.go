// Package events decouples services that request background work from the
// task runner that performs it.
//
// The primary components are:
// - TaskRequestEvent: a request to create a background task under a known id
// - EventHandler: implemented by components that act on events
// - EventEmitter: implemented by components that publish events
package events
