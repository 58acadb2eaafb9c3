// Package fs abstracts the write side of the local file system so that
// blob writes can be tested under injected failures.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that fails writes, syncs, closes or renames
//     of matching files and reports temporary files left behind
//
// Reads go through memory mappings (internal/mmap) and are not covered.
package fs
