// Package jobclient submits a background job to the wallet stats API and
// follows it to completion.
//
// A SubmissionClient issues the single POST that creates the job and returns
// its JobHandle. A Poller turns that handle into a Session: a repeating
// status query on a fixed interval that stops on the first terminal
// observation, emits exactly one notification and, on success, fires the
// RefreshTrigger once. Refresher wires the two together for callers that
// just want "refresh and tell me how it went".
package jobclient
