package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Capacity is the number of beds in a room.  Valid capacities are >= 1.
// Clients historically sent capacity as text, so it decodes from either a
// JSON number or a numeric JSON string and is validated at the boundary.
type Capacity int

// ParseCapacity converts text such as "2" into a Capacity and rejects
// anything that is not a whole number >= 1.
func ParseCapacity(s string) (Capacity, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("capacity must be a whole number, got %q", s)
	}
	c := Capacity(n)
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c, nil
}

// Validate reports whether the capacity is at least one bed.
func (c Capacity) Validate() error {
	if c < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", int(c))
	}
	return nil
}

func (c *Capacity) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("capacity: expected a whole number, got %q", s)
		}
		*c = Capacity(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("capacity: expected number or numeric string, got %s", string(data))
	}
	*c = Capacity(n)
	return nil
}

// Room is a bookable hostel room.  OccupantIDs is the set of students
// currently bound to the room; its length never exceeds Capacity.
type Room struct {
	ID          uint64   `json:"id"`
	Number      string   `json:"roomNumber"`
	Capacity    Capacity `json:"capacity"`
	OccupantIDs []uint64 `json:"occupantStudentIds"`
}

// Occupied reports whether at least one student lives in the room.
func (r Room) Occupied() bool { return len(r.OccupantIDs) > 0 }

// Available returns the number of free beds.
func (r Room) Available() int {
	n := int(r.Capacity) - len(r.OccupantIDs)
	if n < 0 {
		return 0
	}
	return n
}

// Full reports whether every bed is taken.
func (r Room) Full() bool { return len(r.OccupantIDs) >= int(r.Capacity) }

// HasOccupant reports whether studentID is in the occupant set.
func (r Room) HasOccupant(studentID uint64) bool {
	for _, id := range r.OccupantIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// MarshalJSON adds the derived occupied/available fields to the wire form.
func (r Room) MarshalJSON() ([]byte, error) {
	type plain Room
	occupants := r.OccupantIDs
	if occupants == nil {
		occupants = []uint64{}
	}
	p := plain(r)
	p.OccupantIDs = occupants
	return json.Marshal(struct {
		plain
		Occupied  bool `json:"occupied"`
		Available int  `json:"available"`
	}{plain: p, Occupied: r.Occupied(), Available: r.Available()})
}

// RoomFilter narrows ListRooms.  Query matches room number or the decimal
// capacity/occupant count; OnlyAvailable keeps rooms with a free bed.
type RoomFilter struct {
	Query         string
	OnlyAvailable bool
}

// Match applies the filter to a single room.
func (f RoomFilter) Match(r Room) bool {
	if f.OnlyAvailable && r.Full() {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Number), q) ||
		strings.Contains(strconv.Itoa(int(r.Capacity)), q) ||
		strings.Contains(strconv.Itoa(len(r.OccupantIDs)), q)
}
