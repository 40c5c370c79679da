package stats

import (
	"encoding/csv"
	"errors"
)

func fromCSVError(err error) error {
	var cerr *csv.ParseError
	if errors.As(err, &cerr) {
		return &ParseError{Line: cerr.Line, Msg: cerr.Err.Error(), Err: err}
	}
	return &ParseError{Msg: "failed to read csv", Err: err}
}
