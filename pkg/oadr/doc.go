// Package oadr holds the demand-response event model and the pure
// time computations over it: merging signal intervals into an active
// period and classifying an active period against a given instant.
//
// Nothing in this package reads the system clock; callers pass "now".
package oadr
