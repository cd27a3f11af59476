// Package mediaremote provides access to the macOS "now playing" media
// session through the private MediaRemote framework.
//
// The framework is loaded by path at runtime and its symbols are resolved
// dynamically, since none of them are part of a public SDK. Open loads it
// once per process; a load failure is permanent and every later call fails
// the same way.
//
// Queries are best-effort. The framework answers asynchronously on an
// internal queue, so each query blocks the caller with a short timeout and
// reports absence (nothing playing, no answer) as ok=false rather than an
// error. See NowPlaying for a cached, notification-driven view on top of
// the raw queries.
//
// Besides the in-process bindings, the package ships two out-of-process
// access paths for hosts where loading a private framework directly is
// undesirable: HelperSession drives the bundled adapter helper over a JSON
// line stream, and ScriptSession polls an osascript probe.
package mediaremote
