/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package tumblrimport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an import stopped.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindReadFailure
	KindParseFailure
	KindSchemaFailure
	KindWriteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindReadFailure:
		return "ReadFailure"
	case KindParseFailure:
		return "ParseFailure"
	case KindSchemaFailure:
		return "SchemaFailure"
	case KindWriteFailure:
		return "WriteFailure"
	}
	return "Unknown"
}

// Sentinels for errors.Is. An *ImportError matches the sentinel of its kind.
var (
	ErrNotFound = &ImportError{Kind: KindNotFound}
	ErrRead     = &ImportError{Kind: KindReadFailure}
	ErrParse    = &ImportError{Kind: KindParseFailure}
	ErrSchema   = &ImportError{Kind: KindSchemaFailure}
	ErrWrite    = &ImportError{Kind: KindWriteFailure}
)

// ImportError is returned by every stage of the import. All kinds are fatal.
type ImportError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *ImportError of the same kind.
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, err error, format string, a ...interface{}) *ImportError {
	return &ImportError{Kind: kind, Msg: fmt.Sprintf(format, a...), Err: err}
}

// KindOf returns the kind of err, or 0 if err is not an *ImportError.
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}
