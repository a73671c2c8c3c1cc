package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate indica violação de chave única (erro 1062 do MySQL).
var ErrDuplicate = errors.New("duplicate key")

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
