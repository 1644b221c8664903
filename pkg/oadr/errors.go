package oadr

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput is matched by every input validation failure in this package.
	ErrInvalidInput = errors.New("oadr: invalid input")

	ErrNoIntervals = fmt.Errorf("%w: no intervals", ErrInvalidInput)
)

// GapError reports two neighbouring intervals that do not touch.
type GapError struct {
	Index     int // index of the first interval of the pair
	End       time.Time
	NextStart time.Time
}

func (e *GapError) Error() string {
	return fmt.Sprintf("oadr: interval %d ends at %s but interval %d starts at %s",
		e.Index, e.End.Format(time.RFC3339Nano), e.Index+1, e.NextStart.Format(time.RFC3339Nano))
}

func (e *GapError) Unwrap() error { return ErrInvalidInput }
