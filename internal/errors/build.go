package errors

import (
	stderrors "errors"

	"github.com/vango-dev/navstack/pkg/keycodec"
	"github.com/vango-dev/navstack/pkg/routegen"
	"github.com/vango-dev/navstack/pkg/store"
)

var buildCodes = map[routegen.BuildErrorType]string{
	routegen.ErrorInvalidDirective:    "E101",
	routegen.ErrorInvalidPresentation: "E102",
	routegen.ErrorNotPlainFunc:        "E103",
	routegen.ErrorLocalKeyType:        "E104",
	routegen.ErrorInterfaceKeyType:    "E105",
	routegen.ErrorUnresolvedKeyType:   "E106",
	routegen.ErrorBadSignature:        "E107",
	routegen.ErrorDuplicateKey:        "E108",
	routegen.ErrorResultMismatch:      "E109",
	routegen.ErrorImportConflict:      "E110",
}

// FromBuildError converts one route build error.
func FromBuildError(be routegen.BuildError) *NavError {
	code, ok := buildCodes[be.Type]
	if !ok {
		code = "E100"
	}
	e := New(code).WithHandler(be.Handler).Wrap(be)
	if be.Message != "" {
		e.Message = be.Message
	}
	if be.Details != "" {
		e.Detail = be.Details
	}
	if be.File != "" {
		e.WithLocation(be.File, be.Line, be.Column)
	}
	return e
}

// FromBuild flattens err into coded errors. A *routegen.MultiBuildError
// yields one entry per build error; anything else yields a single E100.
func FromBuild(err error) []*NavError {
	if err == nil {
		return nil
	}
	var multi *routegen.MultiBuildError
	if stderrors.As(err, &multi) {
		out := make([]*NavError, len(multi.Errors))
		for i, be := range multi.Errors {
			out[i] = FromBuildError(be)
		}
		return out
	}
	var be routegen.BuildError
	if stderrors.As(err, &be) {
		return []*NavError{FromBuildError(be)}
	}
	return []*NavError{FromError(err, "E100")}
}

// FromStoreError maps stack store and codec failures.
func FromStoreError(err error) *NavError {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, store.ErrNotFound):
		return New("E160").Wrap(err)
	case stderrors.Is(err, keycodec.ErrUnknownType):
		return New("E161").WithDetail(err.Error()).Wrap(err)
	default:
		return FromError(err, "E161")
	}
}
