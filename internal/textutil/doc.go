// Package textutil provides text helpers shared by the sheet model and the
// conversion pipeline.
//
// SanitizeFileName turns disc and track titles into names that are safe as a
// single path segment on every supported platform.
package textutil
