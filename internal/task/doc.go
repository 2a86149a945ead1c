// Package task manages background job queuing, processing, and lifecycle.
// It runs wallet statistics recalculations asynchronously so HTTP handlers
// only persist a pending task and return, and it recovers unfinished tasks
// after an application restart.
package task
