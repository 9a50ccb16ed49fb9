package attendance

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isDuplicateRecordViolation detects the store-level guard firing: either
// two deliveries raced on the same idempotency key, or two open attempts
// raced on the same (employee, date). Both mean the record already exists
// and the caller should re-read it as AlreadyProcessed.
func isDuplicateRecordViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "uq_attendances_idempotency_key", "uq_attendances_employee_date":
				return true
			}
		}
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") &&
		(strings.Contains(errMsg, "uq_attendances_idempotency_key") ||
			strings.Contains(errMsg, "uq_attendances_employee_date"))
}
