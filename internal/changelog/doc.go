// Package changelog manages the mod's changelog.txt in the Factorio
// changelog format.
//
// This package implements:
//   - Parsing changelog.txt into entries with categorized bullet lists
//   - Prepending a blank entry for the next development cycle
//   - Finalizing the topmost entry for a release (Version and Date lines only)
//   - Version and entry querying for CLI display
//   - YAML export of the parsed entries
//
// Rewrites are line based: only the targeted lines change, every other line
// is carried over byte for byte.
package changelog
