// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exit

// Codes that are common to all command times (server + client) follow.

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// UnspecifiedError (1) indicates the process has terminated with an
// error condition. The specific cause of the error can be found in
// the logging output.
func UnspecifiedError() Code { return Code{1} }

// Interrupted (3) indicates the server process was interrupted with
// Ctrl+C / SIGINT.
func Interrupted() Code { return Code{3} }

// CommandLineFlagError (4) indicates there was an error in the
// command-line parameters.
func CommandLineFlagError() Code { return Code{4} }

// Codes that are specific to client commands follow. Command-specific
// exit codes are allocated down from 125.

// MetaNodeUnavailable (124) indicates that the meta node could not be
// reached or had no quorum.
func MetaNodeUnavailable() Code { return Code{124} }

// StatementOutcomeUnknown (125) indicates that a statement timed out and
// may or may not have been applied.
func StatementOutcomeUnknown() Code { return Code{125} }
