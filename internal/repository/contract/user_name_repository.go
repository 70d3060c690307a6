package contract

import (
	"context"
	"errors"
)

// ErrNameTaken is returned when another handle already registered the name.
var ErrNameTaken = errors.New("name already taken")

// UserNameRepository maps a stable chat handle to the display name chosen once by the user.
type UserNameRepository interface {
	NameOf(handle string) (string, bool)
	Register(ctx context.Context, handle, name string) error
}
