package market

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels for errors.Is matching. Every typed error below reports Is() for
// its sentinel, so callers never need a type assertion just to classify.
var (
	ErrDuplicateDate    = errors.New("duplicate historical date")
	ErrNonMonotonicTime = errors.New("non-monotonic time")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateSymbol  = errors.New("duplicate symbol")
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
)

// DuplicateDateError is returned when a ledger already holds a record for the
// appended date.
type DuplicateDateError struct {
	Date time.Time
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("historical record for %s already exists", e.Date.Format(DateFormat))
}

func (e *DuplicateDateError) Is(target error) bool { return target == ErrDuplicateDate }

// NonMonotonicTimeError is returned when a tick does not move time forward.
type NonMonotonicTimeError struct {
	Symbol string // empty when raised by the registry itself
	Last   time.Time
	Got    time.Time
}

func (e *NonMonotonicTimeError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("tick at %s is not after last tick %s",
			e.Got.Format(time.RFC3339), e.Last.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s: tick at %s is not after last tick %s",
		e.Symbol, e.Got.Format(time.RFC3339), e.Last.Format(time.RFC3339))
}

func (e *NonMonotonicTimeError) Is(target error) bool { return target == ErrNonMonotonicTime }

// NotFoundError is returned for unknown symbols.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("stock %q not found", e.Symbol) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateSymbolError is returned when a symbol is registered twice.
type DuplicateSymbolError struct {
	Symbol string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("stock %q already registered", e.Symbol)
}

func (e *DuplicateSymbolError) Is(target error) bool { return target == ErrDuplicateSymbol }
