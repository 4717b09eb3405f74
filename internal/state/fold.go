package state

import (
	"database/sql/driver"

	"golang.org/x/text/cases"

	// Also registers the "sqlite" driver with database/sql.
	"modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode case-folding function.
// SQLite's built-in lower() only folds ASCII.
const foldFunc = "pb_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, sqlFold)
}

func sqlFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return foldString(v), nil
	case []byte:
		return foldString(string(v)), nil
	default:
		return v, nil
	}
}

// foldString applies full Unicode case folding. A Caser holds state,
// so each call gets its own.
func foldString(s string) string {
	return cases.Fold().String(s)
}
