// Package epics models EPICS process variables (PVs) and signals.
//
// A PV is a named value served by an IOC (Input/Output Controller). This
// package provides:
//   - PV name composition helpers (prefix + suffix, record fields)
//   - Value, a typed wrapper around readings from the transport
//   - Conn, the transport seam (Channel Access itself is not implemented
//     here; a CA client, a gateway, or the SoftIOC test fake satisfies it)
//   - Signal, a named PV bound to a Conn with enum-string support
//
// All blocking operations take a context.Context and respect its deadline.
//
// Thread Safety: Signal is safe for concurrent use provided the underlying
// Conn is; SoftIOC is safe for concurrent use.
package epics
