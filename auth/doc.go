// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles password hashing for user accounts.

# Password Storage

Passwords are never stored in plain text. HashPassword produces a salted
bcrypt hash:

	hash, err := auth.HashPassword(password, cfg.BcryptCost)

# Verification

CheckPassword compares in constant time and returns ErrInvalidPassword on
mismatch:

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return errs.ErrBadCredentials
	}

When the username is unknown, call BurnCompare with the same cost so the
response time does not reveal whether the account exists:

	auth.BurnCompare(password, cfg.BcryptCost)

# Authorization

This package does not decide who may mute, ban or promote users. Caller
identity and permissions are checked outside the API.
*/
package auth
