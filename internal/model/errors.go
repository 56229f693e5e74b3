package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")

	// Ban errors
	ErrDuplicateBan = errors.New("player already has an active ban")
	ErrBanNotFound  = errors.New("no active ban for player")
)
