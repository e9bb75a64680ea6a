package storage

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/electronic-shop/internal/core/domain"
)

// MySQL server error numbers the adapter reacts to.
const (
	errDuplicateEntry  uint16 = 1062
	errNoReferencedRow uint16 = 1452
	errLockWaitTimeout uint16 = 1205
	errLockDeadlock    uint16 = 1213
	errCheckConstraint uint16 = 3819
)

func mysqlErrorNumber(err error) (uint16, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, true
	}
	return 0, false
}

// classify attaches the domain error matching a driver failure, leaving others untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %w", domain.ErrConnectionUnavailable, err)
	}

	n, ok := mysqlErrorNumber(err)
	if !ok {
		return err
	}
	switch n {
	case errDuplicateEntry:
		return fmt.Errorf("%w: %w", domain.ErrDuplicateIdentity, err)
	case errLockDeadlock, errLockWaitTimeout:
		return fmt.Errorf("%w: %w", domain.ErrRetryable, err)
	case errCheckConstraint:
		return fmt.Errorf("%w: %w", domain.ErrInvalidProduct, err)
	}
	return err
}
