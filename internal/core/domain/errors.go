package domain

import "errors"

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrEntityNotFound     = errors.New("entity not found")
)
