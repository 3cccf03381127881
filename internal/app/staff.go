package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/shared"
)

// ErrUnknownToken indicates the presented credential matches no staff
// member.
var ErrUnknownToken = errors.New("app: unknown staff token")

// StaticStaffChecker resolves bearer tokens against the configured
// token list. A stand-in for the real identity provider; the rest of
// the system only sees the StaffChecker port.
func StaticStaffChecker(tokens map[string]string) shared.StaffChecker {
	return shared.StaffCheckerFunc(func(_ context.Context, token string) (*shared.Principal, error) {
		email, ok := tokens[token]
		if !ok {
			return nil, ErrUnknownToken
		}
		return &shared.Principal{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(email)).String(),
			Email: email,
		}, nil
	})
}
