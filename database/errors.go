package database

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid database config")

var (
	ErrRecordNotFound = errcode.Register(errcode.New(errcode.ModuleDatabase, 1, "database",
		"error.database.record_not_found", "record not found", http.StatusNotFound))
	ErrDuplicateKey = errcode.Register(errcode.New(errcode.ModuleDatabase, 2, "database",
		"error.database.duplicate_key", "duplicate key", http.StatusConflict))
	ErrQueryFailed = errcode.Register(errcode.New(errcode.ModuleDatabase, 3, "database",
		"error.database.query_failed", "database query failed"))
)

// translate maps gorm errors onto the package sentinels, keeping the cause.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound.Wrap(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey.Wrap(err)
	default:
		return ErrQueryFailed.WithMsgf("%s failed", op).Wrap(err)
	}
}
