package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same key already exists
	ErrDuplicate = errors.New("record already exists")
	// ErrZeroLikes is returned when a like count would drop below zero
	ErrZeroLikes = errors.New("like count is already zero")
	// ErrInsufficientBalance is returned when a redemption would overspend a brand balance
	ErrInsufficientBalance = errors.New("insufficient points balance")
)
