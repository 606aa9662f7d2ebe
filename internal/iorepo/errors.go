package iorepo

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/pkg/errcode"
)

// NotFoundError is returned when a record with the given ID does not
// exist.
func NotFoundError(entity string, id uint) error {
	msg := "Cannot find <em>%s</em> with ID <em>%d</em>"
	vars := []any{entity, id}
	return &gn.Error{
		Code: errcode.RepoNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%s %d not found", entity, id),
	}
}

func QueryError(entity string, err error) error {
	msg := "Cannot read <em>%s</em> from database"
	vars := []any{entity}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RepoQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot query %s: %w",
			fn, entity, err),
	}
}

func SaveError(entity string, err error) error {
	msg := "Cannot save <em>%s</em> to database"
	vars := []any{entity}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RepoSaveError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot save %s: %w",
			fn, entity, err),
	}
}
