// Package waypoint stores named locations the agent can be sent back to.
// Deleted waypoints are kept around so they can be restored.
package waypoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"voxelpilot.ai/internal/goal"
)

var ErrNotFound = errors.New("waypoint: not found")

type Tag string

const (
	TagUser  Tag = "USER"
	TagHome  Tag = "HOME"
	TagDeath Tag = "DEATH"
	TagBed   Tag = "BED"
)

var Tags = []Tag{TagUser, TagHome, TagDeath, TagBed}

// ParseTag is case-insensitive. "sethome"/"home" style names map to HOME.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToUpper(strings.TrimSpace(s)))
	for _, x := range Tags {
		if x == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("waypoint: unknown tag %q", s)
}

type Waypoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tag       Tag       `json:"tag"`
	Pos       goal.Pos  `json:"pos"`
	CreatedAt time.Time `json:"created_at"`
}

func (w Waypoint) String() string {
	name := w.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s %s @ %s", w.Tag, name, w.Pos)
}
