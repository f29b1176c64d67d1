package domain

import "errors"

var (
	ErrNoWalletConnected        = errors.New("no wallet connected")
	ErrNoActiveSession          = errors.New("no active user session")
	ErrProfileUpdateFailed      = errors.New("profile update failed")
	ErrIdentityResolutionFailed = errors.New("identity resolution failed")
	ErrProfileNotFound          = errors.New("profile not found")
	ErrNothingToResume          = errors.New("no saved wallet to resume")
	ErrFlowInProgress           = errors.New("another wallet flow is in progress")
	ErrSecretNotFound           = errors.New("secret not found")
)
