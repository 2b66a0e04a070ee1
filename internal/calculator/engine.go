package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is returned by Divide when the divisor is exactly zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidOperation is returned by ParseOperation for values outside the
	// four supported operations.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Operation is one of the four supported arithmetic operations.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// Operations lists the accepted operation values in display order.
var Operations = []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide}

// ParseOperation validates s against the closed set of operations.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, s)
	}
}

// Symbol returns the operator character used in history expressions.
func (op Operation) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return "?"
	}
}

func Add(a, b float64) float64 { return a + b }

func Subtract(a, b float64) float64 { return a - b }

func Multiply(a, b float64) float64 { return a * b }

// Divide returns a / b, or ErrDivisionByZero when b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: %g / %g", ErrDivisionByZero, a, b)
	}
	return a / b, nil
}

// Apply dispatches op to the matching engine function.
func Apply(op Operation, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return Add(a, b), nil
	case OpSubtract:
		return Subtract(a, b), nil
	case OpMultiply:
		return Multiply(a, b), nil
	case OpDivide:
		return Divide(a, b)
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperation, string(op))
	}
}
