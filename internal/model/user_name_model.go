package model

// UserNames is the on-disk shape of the name registry: handle -> display name.
type UserNames map[string]string
