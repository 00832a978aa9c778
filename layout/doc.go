// Package layout describes the construction plan for one struct type: its
// fields in declaration order, which are head fields and which are tail
// fields, and how to destroy each field on unwind.
//
// A Plan is built once per struct type, either by hand or by the compile
// package, and is then shared by every construction of that type. Plan
// validation enforces the structural rules: every head field precedes
// every tail field, field names are unique, and each named field exists
// on the struct.
//
// The package also provides untyped size/align/offset arithmetic over
// declared field descriptors, used by tooling that works with layouts
// that have no Go type behind them.
package layout
