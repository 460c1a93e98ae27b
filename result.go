package pdata

import (
	"errors"
	"fmt"
)

// ErrInconsistentResult is returned by ResultBuilder.Build when the result
// type contradicts the value lists.
var ErrInconsistentResult = errors.New("inconsistent transaction result")

// ResultType is the outcome of a data transaction.
type ResultType int

const (
	// Undefined is the type of a result nothing has been decided for yet.
	Undefined ResultType = iota
	// Success means all requested values were applied.
	Success
	// Failure means the values were rejected and nothing changed.
	Failure
	// Error means applying the values failed and the holder was restored
	// where possible.
	Error
	// Cancelled means a listener vetoed the change before it was applied.
	Cancelled
)

// String returns the string representation of the result type.
func (t ResultType) String() string {
	switch t {
	case Undefined:
		return "Undefined"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case Error:
		return "Error"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// TransactionResult is the immutable record of one data operation.
type TransactionResult struct {
	typ      ResultType
	success  []AnyValue
	replaced []AnyValue
	rejected []AnyValue
}

// Type returns the result type.
func (r TransactionResult) Type() ResultType { return r.typ }

// IsSuccessful returns true if the result type is Success.
func (r TransactionResult) IsSuccessful() bool { return r.typ == Success }

// Successful returns the values that were applied.
func (r TransactionResult) Successful() []AnyValue { return clone(r.success) }

// Replaced returns the values that were overwritten.
func (r TransactionResult) Replaced() []AnyValue { return clone(r.replaced) }

// Rejected returns the values that could not be applied.
func (r TransactionResult) Rejected() []AnyValue { return clone(r.rejected) }

// String returns a debug representation of the result.
func (r TransactionResult) String() string {
	return fmt.Sprintf("TransactionResult{Type: %s, Success: %d, Replaced: %d, Rejected: %d}",
		r.typ, len(r.success), len(r.replaced), len(r.rejected))
}

func clone(vs []AnyValue) []AnyValue {
	if len(vs) == 0 {
		return nil
	}
	out := make([]AnyValue, len(vs))
	copy(out, vs)
	return out
}

// SuccessNoData returns a successful result without values.
func SuccessNoData() TransactionResult {
	return TransactionResult{typ: Success}
}

// SuccessResult returns a successful result for the applied values.
func SuccessResult(values ...AnyValue) TransactionResult {
	return TransactionResult{typ: Success, success: clone(values)}
}

// SuccessReplaceResult returns a successful result for applied values that
// overwrote the replaced ones.
func SuccessReplaceResult(applied, replaced []AnyValue) TransactionResult {
	return TransactionResult{typ: Success, success: clone(applied), replaced: clone(replaced)}
}

// FailNoData returns a failed result without values. It is returned when a
// holder does not support a trait or the trait is absent.
func FailNoData() TransactionResult {
	return TransactionResult{typ: Failure}
}

// FailResult returns a failed result for the rejected values.
func FailResult(rejected ...AnyValue) TransactionResult {
	return TransactionResult{typ: Failure, rejected: clone(rejected)}
}

// ErrorResult returns an error result for the values that could not be
// applied.
func ErrorResult(rejected ...AnyValue) TransactionResult {
	return TransactionResult{typ: Error, rejected: clone(rejected)}
}

// CancelledResult returns a cancelled result for the vetoed values.
func CancelledResult(rejected ...AnyValue) TransactionResult {
	return TransactionResult{typ: Cancelled, rejected: clone(rejected)}
}

// ResultBuilder composes a TransactionResult.
type ResultBuilder struct {
	typ      ResultType
	worst    ResultType
	success  []AnyValue
	replaced []AnyValue
	rejected []AnyValue
}

// NewResult returns an empty result builder.
func NewResult() *ResultBuilder {
	return &ResultBuilder{}
}

// Success adds applied values.
func (b *ResultBuilder) Success(values ...AnyValue) *ResultBuilder {
	b.success = append(b.success, values...)
	return b
}

// Replace adds overwritten values.
func (b *ResultBuilder) Replace(values ...AnyValue) *ResultBuilder {
	b.replaced = append(b.replaced, values...)
	return b
}

// Reject adds values that could not be applied.
func (b *ResultBuilder) Reject(values ...AnyValue) *ResultBuilder {
	b.rejected = append(b.rejected, values...)
	return b
}

// Result sets the result type explicitly.
func (b *ResultBuilder) Result(t ResultType) *ResultBuilder {
	b.typ = t
	return b
}

// Absorb merges the values of r into the builder. It does not set the
// result type: if the type is left Undefined, Build resolves it from the
// combined lists and the most severe absorbed type.
func (b *ResultBuilder) Absorb(r TransactionResult) *ResultBuilder {
	b.success = append(b.success, r.success...)
	b.replaced = append(b.replaced, r.replaced...)
	b.rejected = append(b.rejected, r.rejected...)
	if severity(r.typ) > severity(b.worst) {
		b.worst = r.typ
	}
	return b
}

func severity(t ResultType) int {
	switch t {
	case Success:
		return 1
	case Failure:
		return 2
	case Cancelled:
		return 3
	case Error:
		return 4
	}
	return 0
}

// Build returns the composed result. An Undefined type is resolved from the
// lists: any successful value makes it Success, otherwise the most severe
// absorbed type wins (Error over Cancelled over Failure), otherwise any
// rejected value makes it Failure, and an empty builder resolves to Success.
//
// Build returns ErrInconsistentResult if the type contradicts the lists:
// Failure, Error and Cancelled results cannot carry successful or replaced
// values, and a Success result cannot consist of rejected values only.
func (b *ResultBuilder) Build() (TransactionResult, error) {
	typ := b.typ
	if typ == Undefined {
		switch {
		case len(b.success) > 0:
			typ = Success
		case b.worst != Undefined:
			typ = b.worst
		case len(b.rejected) > 0:
			typ = Failure
		default:
			typ = Success
		}
	}

	switch typ {
	case Failure, Error, Cancelled:
		if len(b.success) > 0 || len(b.replaced) > 0 {
			return TransactionResult{}, fmt.Errorf("%w: %s with %d successful values", ErrInconsistentResult, typ, len(b.success)+len(b.replaced))
		}
	case Success:
		if len(b.success) == 0 && len(b.rejected) > 0 {
			return TransactionResult{}, fmt.Errorf("%w: success with only rejected values", ErrInconsistentResult)
		}
	}

	return TransactionResult{
		typ:      typ,
		success:  clone(b.success),
		replaced: clone(b.replaced),
		rejected: clone(b.rejected),
	}, nil
}
