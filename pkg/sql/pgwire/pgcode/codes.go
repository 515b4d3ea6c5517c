// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgcode defines the PostgreSQL SQLSTATE codes reported by the user
// catalog.
package pgcode

// Code is a wrapper around a SQLSTATE string. It is used to prevent
// arbitrary strings from being used as error codes.
type Code struct {
	code string
}

// MakeCode converts a string into a Code.
func MakeCode(s string) Code {
	return Code{code: s}
}

// String returns the underlying pg code string.
func (c Code) String() string {
	return c.code
}

// SafeValue implements the redact.SafeValue interface.
func (c Code) SafeValue() {}

// PG error codes from: http://www.postgresql.org/docs/9.5/static/errcodes-appendix.html.
// Specifically, errcodes.txt is copied from from Postgres' src/backend/utils/errcodes.txt.
var (
	// Section: Class 08 - Connection Exception
	ConnectionFailure = MakeCode("08006")
	// Section: Class 0A - Feature Not Supported
	FeatureNotSupported = MakeCode("0A000")
	// Section: Class 22 - Data Exception
	InvalidParameterValue = MakeCode("22023")
	// Section: Class 28 - Invalid Authorization Specification
	InvalidPassword = MakeCode("28P01")
	// Section: Class 40 - Transaction Rollback
	SerializationFailure       = MakeCode("40001")
	StatementCompletionUnknown = MakeCode("40003")
	// Section: Class 42 - Syntax Error or Access Rule Violation
	Syntax                = MakeCode("42601")
	InsufficientPrivilege = MakeCode("42501")
	InvalidName           = MakeCode("42602")
	DatatypeMismatch      = MakeCode("42804")
	UndefinedColumn       = MakeCode("42703")
	UndefinedObject       = MakeCode("42704")
	UndefinedTable        = MakeCode("42P01")
	DuplicateObject       = MakeCode("42710")
	// Section: Class 57 - Operator Intervention
	QueryCanceled    = MakeCode("57014")
	CannotConnectNow = MakeCode("57P03")
	// Section: Class XX - Internal Error
	Internal = MakeCode("XX000")

	// Uncategorized is used for errors that flow out to a client
	// when there's no code known yet.
	Uncategorized = MakeCode("XXUUU")
)
