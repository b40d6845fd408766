package domain

import "errors"

var (
	ErrStreamNotFound      = errors.New("stream not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("tip amount must be positive")
	ErrSelfTip             = errors.New("cannot tip your own stream")
)
