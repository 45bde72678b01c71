// Package cache maps resolved remote routes onto
// <view-folder>/<namespace>/<filename> files. The store only tracks
// existence: there is no metadata, checksum or expiry. Directory creation
// tolerates concurrent creators and writes go through a temp file + rename so
// readers never observe a half-written template. The filesystem is an
// afero.Fs, letting tests run against an in-memory tree.
package cache
