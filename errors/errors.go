package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the construction pipeline the error occurred
type Phase string

const (
	PhaseLayout  Phase = "layout"  // plan validation
	PhaseCompile Phase = "compile" // tag-based plan derivation
	PhaseBuild   Phase = "build"   // cursor-driven field writes
	PhaseFinish  Phase = "finish"  // handle completion
	PhaseReinit  Phase = "reinit"  // re-initialization after a move
	PhaseStorage Phase = "storage" // block allocation and release
)

// Kind categorizes the error
type Kind string

const (
	KindFieldOrder     Kind = "field_order"
	KindDuplicateField Kind = "duplicate_field"
	KindUnknownField   Kind = "unknown_field"
	KindMissingField   Kind = "missing_field"
	KindInvalidTag     Kind = "invalid_tag"
	KindNotStruct      Kind = "not_struct"
	KindNotTerminal    Kind = "not_terminal"
	KindAllocation     Kind = "allocation"
	KindUnsupported    Kind = "unsupported"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the library.
//
// Tail-field initialization failures are deliberately NOT wrapped in this
// type: the initializer's error is surfaced to the caller verbatim, so
// callers can match on their own sentinel values.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Field  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Field != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Field != "" {
			b.WriteString(e.GoType)
			b.WriteByte('.')
			b.WriteString(e.Field)
		} else if e.GoType != "" {
			b.WriteString(e.GoType)
		} else {
			b.WriteString("field ")
			b.WriteString(e.Field)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Field != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the struct type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Field sets the field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// FieldOrder creates an error for a head field declared after a tail field
func FieldOrder(phase Phase, goType, field string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldOrder,
		GoType: goType,
		Field:  field,
		Detail: "head field declared after a tail field",
	}
}

// DuplicateField creates an error for a field listed twice in a plan
func DuplicateField(phase Phase, goType, field string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateField,
		GoType: goType,
		Field:  field,
		Detail: "field listed more than once",
	}
}

// UnknownField creates an error for a plan field the struct does not declare
func UnknownField(phase Phase, goType, field string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownField,
		GoType: goType,
		Field:  field,
		Detail: "struct has no such field",
	}
}

// InvalidTag creates an error for an unrecognized incr struct tag
func InvalidTag(goType, field, tag string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInvalidTag,
		GoType: goType,
		Field:  field,
		Detail: fmt.Sprintf("unrecognized tag value %q", tag),
		Value:  tag,
	}
}

// NotStruct creates an error for plan derivation over a non-struct type
func NotStruct(goType string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindNotStruct,
		GoType: goType,
		Detail: "plans can only be derived for struct types",
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(size, align uintptr) *Error {
	return &Error{
		Phase:  PhaseStorage,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
