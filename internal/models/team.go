package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Team represents a KBO club
type Team struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ShortName string    `db:"short_name" json:"short_name"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Ref returns the id/name pair used by the game views
func (t *Team) Ref() TeamRef {
	return TeamRef{ID: t.ID, Name: t.Name}
}

// TeamRef is the team relation embedded in game payloads
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts either an object or a list of objects, keeping the first element.
// Clients that relay joined rows send the relation in both shapes.
func (r *TeamRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	type plain TeamRef

	if len(data) > 0 && data[0] == '[' {
		var list []plain
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("invalid team list: %w", err)
		}
		if len(list) > 0 {
			*r = TeamRef(list[0])
		}
		return nil
	}

	var single plain
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("invalid team: %w", err)
	}
	*r = TeamRef(single)
	return nil
}
