package service

import "errors"

// ErrInvalidStatus is returned when ranking is requested for a status other
// than approved or completed.
var ErrInvalidStatus = errors.New("invalid ranking status")
