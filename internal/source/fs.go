package source

import "github.com/opmodel/tscompiler/internal/span"

// FilesystemContext is the opaque collaborator spec.md §6 describes: the
// compiler never touches os.* directly, it asks a caller-supplied context.
// This module declares the interface only and ships no implementation of
// it.
type FilesystemContext interface {
	FileExists(path string) bool
	ReadFile(path string) (string, error)
	ReadDirectory(prefix string) ([]string, error)
	GetSiblingFiles(path string, extensions []string) ([]string, error)
	NormalizePath(path string) string
	CaseSensitive() bool
}

// VMReflectionToken is the opaque host-type-system collaborator from spec.md
// §6: it contributes fingerprint bytes and the root VM type literal embedded
// in the overlay, without the compiler ever inspecting its internals.
type VMReflectionToken interface {
	// RootVMTypeExpr returns the literal host-type expression for a
	// template's backing view-model (e.g. a class/type name or struct tag).
	RootVMTypeExpr(file span.SourceFileId) string

	// QualifiedRootVMTypeExpr optionally returns a fully-qualified variant
	// (e.g. including an import alias); ok is false when the token has none.
	QualifiedRootVMTypeExpr(file span.SourceFileId) (expr string, ok bool)

	// SyntheticPrefix names the prefix used for compiler-synthesized
	// identifiers in the overlay, so host tooling can recognize and hide
	// them (e.g. "__au$").
	SyntheticPrefix() string

	// FingerprintHint contributes opaque bytes to stage fingerprints. Tokens
	// that can't express a stable hint return the literal "custom"; tokens
	// using compiler defaults return "default" (spec.md §4.1).
	FingerprintHint() string
}
