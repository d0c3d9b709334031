package mysql

import (
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/iliyamo/justloook-provider-portal/internal/backend"
)

// MySQL server error numbers we translate.
const (
	errDupEntry             = 1062
	errDBAccessDenied       = 1044
	errTableAccessDenied    = 1142
	errColumnAccessDenied   = 1143
	errSpecificAccessDenied = 1227
)

func isDuplicate(err error) bool {
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

// wrap annotates err with op and tags privilege failures with
// backend.ErrPermissionDenied.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDBAccessDenied, errTableAccessDenied, errColumnAccessDenied, errSpecificAccessDenied:
			return fmt.Errorf("%s: %w: %v", op, backend.ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
