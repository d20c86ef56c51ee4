package memory

import "github.com/iliyamo/hostel-management/internal/model"

// SeedDemo loads the sample student account used for local development
// when the service runs without a database.
func (s *Store) SeedDemo() {
	s.AddStudent(model.Student{UserID: 2, Name: "John Doe", Email: "john@example.com"})
}
