package tag

import (
	"errors"
	"strings"

	tagerrors "github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/tag/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tagerrors.ErrTagNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_tag_bindings_tag_id" {
			return tagerrors.ErrTagAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_tag_bindings_tag_id") {
		return tagerrors.ErrTagAlreadyExists
	}

	return err
}
