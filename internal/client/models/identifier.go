package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const localIDPrefix = "note_"

// Identifier is either a client-generated local id or a server-assigned integer id.
// The zero value is an empty local id.
type Identifier struct {
	local    string
	remote   int64
	isRemote bool
}

// LocalID wraps a client-side identifier
func LocalID(s string) Identifier {
	return Identifier{local: s}
}

// RemoteID wraps a server-assigned identifier
func RemoteID(n int64) Identifier {
	return Identifier{remote: n, isRemote: true}
}

// NewLocalID generates a fresh identifier for a note the server has not seen yet
func NewLocalID() Identifier {
	return LocalID(localIDPrefix + uuid.NewString())
}

// ParseIdentifier turns the textual form back into an Identifier.
// Integer text is treated as a server id.
func ParseIdentifier(s string) Identifier {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return RemoteID(n)
	}
	return LocalID(s)
}

// IsRemote reports whether the note has been persisted by the server
func (id Identifier) IsRemote() bool {
	return id.isRemote
}

// Remote returns the server id when there is one
func (id Identifier) Remote() (int64, bool) {
	return id.remote, id.isRemote
}

// IsZero reports whether the identifier is empty
func (id Identifier) IsZero() bool {
	return !id.isRemote && id.local == ""
}

func (id Identifier) String() string {
	if id.isRemote {
		return strconv.FormatInt(id.remote, 10)
	}
	return id.local
}
