package ports

import "errors"

// ErrDuplicateCode is returned by TeamRepository.CreateInvite on a code collision.
var ErrDuplicateCode = errors.New("invite code already exists")
