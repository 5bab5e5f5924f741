// Package docs persists Bluesky-style resource and datum documents.
//
// A resource document points at one file written by an area-detector file
// plugin (its spec string names the reader: AD_HDF5, AD_TIFF, AD_JPEG); a
// datum document points at one frame within that resource. Downstream
// analysis resolves datum IDs back to file regions through this store.
//
// The SQLite implementation uses the shared database wrapper; documents
// are append-only.
package docs
