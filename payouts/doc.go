// Package payouts is the typed surface for paying funds out of a
// merchant account. Creates are signed and idempotency-keyed; payouts
// settle asynchronously and can be polled to a terminal status.
package payouts
