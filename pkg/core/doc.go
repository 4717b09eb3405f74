// Package core defines the shared language of the phonebook system.
//
// This package contains:
//   - Domain entities (Contact, Message, Call)
//   - Closed enumerations (CallType, Direction)
//   - The error taxonomy (ValidationError, NotFoundError)
//   - The Store interface and its query types
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
