// Package ven is the event side of a Virtual End Node: it pulls events
// from a Fetcher onto a FIFO queue, pulls event items back off ahead of
// other traffic, works out each event's status and publishes changes.
package ven
