// Package merchantaccounts is the typed surface for merchant account
// management, including automatic sweeping configuration.
package merchantaccounts
