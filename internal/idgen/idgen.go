// Package idgen mints identifiers: UUIDs for widgets, and short prefixed
// nanoids for events and snapshots.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortLength = 10

	eventPrefix    = "ev-"
	snapshotPrefix = "snap-"
)

// WidgetID returns a random (version 4) UUID.
func WidgetID() string {
	return uuid.NewString()
}

// EventID returns an ID such as "ev-4fQk2ZpA9x" for a published event.
func EventID() (string, error) {
	return short(eventPrefix)
}

// SnapshotID returns an ID such as "snap-Jw81mKcQe0" for a backup snapshot.
func SnapshotID() (string, error) {
	return short(snapshotPrefix)
}

func short(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, shortLength)
	if err != nil {
		return "", fmt.Errorf("generate %sID: %w", prefix, err)
	}
	return prefix + id, nil
}
