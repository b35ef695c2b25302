// Package harness runs YAML conformance scenarios against a live
// in-process stack (store, repositories, login, undo history) and
// compares the resulting trace against golden files.
package harness
