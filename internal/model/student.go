package model

import "strings"

// Student mirrors the students table joined with the owning user profile.
// RoomID is nil while the student has no bed; when set, the room's
// occupant set contains ID.
//
// Fields:
//  ID         – students.id
//  UserID     – users.id of the linked account (role STUDENT)
//  Name/Email – display fields copied from the user profile
//  RoomID     – students.room_id (nullable)
//  RoomNumber – rooms.room_number of RoomID, filled by readers for display
type Student struct {
	ID         uint64  `json:"id"`
	UserID     uint64  `json:"userId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	RoomID     *uint64 `json:"roomId"`
	RoomNumber *string `json:"roomNumber"`
}

// HasRoom reports whether the student currently holds a bed.
func (s Student) HasRoom() bool { return s.RoomID != nil }

// StudentFilter narrows ListStudents.  Query matches name, email or room
// number; Unassigned keeps only students without a room.
type StudentFilter struct {
	Query      string
	Unassigned bool
}

// Match applies the filter to a single student.
func (f StudentFilter) Match(s Student) bool {
	if f.Unassigned && s.RoomID != nil {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Email), q) {
		return true
	}
	return s.RoomNumber != nil && strings.Contains(strings.ToLower(*s.RoomNumber), q)
}
