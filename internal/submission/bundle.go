// Package submission turns completed dialogs into an admin notification and
// a persisted record.
package submission

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the identity of the person who filled in a flow.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Bundle is the immutable result of a completed flow.
type Bundle struct {
	ID        uuid.UUID
	Flow      string
	User      User
	Fields    map[string]string
	CreatedAt time.Time
}

// NewBundle copies fields so the bundle shares no state with the session.
func NewBundle(flow string, user User, fields map[string]string, now time.Time) Bundle {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			cp[k] = v
		}
	}
	return Bundle{ID: uuid.New(), Flow: flow, User: user, Fields: cp, CreatedAt: now}
}

// Field returns a field value and whether it was supplied.
func (b Bundle) Field(name string) (string, bool) {
	v, ok := b.Fields[name]
	return v, ok
}

// Ref is a short reference shown to the admin.
func (b Bundle) Ref() string {
	return b.ID.String()[:8]
}
