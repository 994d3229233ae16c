// pkg/core/identity.go
package core

import (
	"encoding/json"
	"fmt"
)

// Identity is the opaque token of an acting party, as supplied by the host.
type Identity string

// Owner is an optional Identity. The zero value is unset and never equals a real identity.
type Owner struct {
	id  Identity
	set bool
}

// OwnedBy returns an Owner holding id.
func OwnedBy(id Identity) Owner {
	return Owner{id: id, set: true}
}

// Unowned returns the unset Owner.
func Unowned() Owner {
	return Owner{}
}

// Get returns the identity and whether one is set.
func (o Owner) Get() (Identity, bool) {
	return o.id, o.set
}

// IsSet reports whether an identity is present.
func (o Owner) IsSet() bool {
	return o.set
}

// Is reports whether the owner is set and equal to id.
func (o Owner) Is(id Identity) bool {
	return o.set && o.id == id
}

func (o Owner) String() string {
	if !o.set {
		return "<unset>"
	}
	return string(o.id)
}

// MarshalJSON encodes an unset owner as null.
func (o Owner) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(string(o.id))
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Owner{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	*o = OwnedBy(Identity(s))
	return nil
}
