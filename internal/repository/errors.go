package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

// Failure kinds.  Every error leaving this package (and the coordinator built
// on top of it) matches exactly one of these with errors.Is, or none of them
// when it is unexpected.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrReferentialConflict = errors.New("referential conflict")
	ErrValidation          = errors.New("validation failed")
	ErrAuthentication      = errors.New("authentication failed")
	ErrUnavailable         = errors.New("backend unavailable")
)

// Error carries a failure kind together with the entity involved and a
// message that is safe to show to clients.
type Error struct {
	Kind    error
	Entity  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound reports a missing entity, e.g. NotFound("hotel room").
func NotFound(entity string) error {
	return &Error{Kind: ErrNotFound, Entity: entity, Message: entity + " not found"}
}

// Conflict reports a state or uniqueness conflict with a client-facing message.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Invalid reports malformed input.
func Invalid(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// Unauthenticated reports bad credentials or an unusable token.
func Unauthenticated(msg string) error {
	return &Error{Kind: ErrAuthentication, Message: msg}
}

// ReferentialConflict reports a delete blocked by dependent rows.
func ReferentialConflict(msg string) error {
	return &Error{Kind: ErrReferentialConflict, Message: msg}
}

// Unavailable wraps a backend failure such as a timeout or lost connection.
func Unavailable(what string, err error) error {
	return &Error{Kind: ErrUnavailable, Message: what + " unavailable", Err: err}
}

// MySQL server error numbers the repositories translate.
const (
	mysqlDupEntry        = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlBadNull         = 1048
	mysqlDataTooLong     = 1406
	mysqlTruncatedValue  = 1292
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// classify turns a driver error into a taxonomy error.  entity names the row
// the statement was about and is used for not-found and duplicate messages.
// Errors that are already classified pass through unchanged.
func classify(entity string, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound(entity)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return &Error{Kind: ErrConflict, Entity: entity, Message: entity + " already exists", Err: err}
		case mysqlRowIsReferenced:
			return &Error{Kind: ErrReferentialConflict, Entity: entity, Message: "cannot delete " + entity + " while other records reference it", Err: err}
		case mysqlNoReferencedRow:
			return &Error{Kind: ErrNotFound, Entity: entity, Message: "referenced record not found", Err: err}
		case mysqlBadNull, mysqlDataTooLong, mysqlTruncatedValue:
			return &Error{Kind: ErrValidation, Entity: entity, Message: "invalid " + entity + " fields", Err: err}
		case mysqlLockWaitTimeout, mysqlDeadlock:
			return Unavailable("database", err)
		}
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.As(err, &netErr) {
		return Unavailable("database", err)
	}
	return err
}

func isKind(err, kind error) bool {
	var typed *Error
	return errors.As(err, &typed) && typed.Kind == kind
}
