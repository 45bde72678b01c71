// Package remote resolves delimiter-prefixed template identifiers such as
// "remote:specific::dasLamm" into local files fetched from the upstream host
// configured for the namespace.
//
// A resolution runs through fixed stages: parse the identifier, look up the
// host, apply the suffix and forbidden-path filters, map the path and run the
// URL modifier chain, address the cache file, then either return the cached
// file or fetch, dispatch the response to a status handler and persist the
// payload. Any failure ends the resolution; nothing is retried.
//
// Modifiers, response handlers and the filename strategy are injected when
// the Engine is built and are not changed afterwards.
package remote
