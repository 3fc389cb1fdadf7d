// Package pollable provides generic polling for asynchronous resources.
//
// Payments and payouts settle out of band: a create call returns quickly,
// and the resource transitions through intermediate statuses before
// reaching a terminal one. Until repeatedly fetches a resource with
// exponential backoff until a caller-supplied condition holds, the
// elapsed budget runs out, or the context is cancelled.
package pollable
