// Package domain defines the core business entities for reposcope.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FileDescriptor: A file selected from a repository tree
//   - Document: An open tab and its load/render state
//   - FileType: The type detected from a file name
//   - RendererKind: Which renderer presents a document
//   - RepoRef, RepoTree, TreeNode: The repository being browsed
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
