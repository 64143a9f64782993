// Package pce defines the typed object model, codec, and client
// interfaces for the Illumio Policy Compute Engine REST API.
//
// Objects embed Reference (an opaque HREF identity) and carry an Extra
// map that preserves server fields unknown to the local schema, so
// round-tripping an object through a newer PCE loses nothing. The
// codec in this package derives a cached TypeModel per struct type and
// uses it to decode, validate, and encode objects recursively.
//
// Concrete client implementations live under internal/client; use
// pkg/pceclient to construct one.
package pce
