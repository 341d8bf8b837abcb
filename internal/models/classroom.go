package models

import "time"

// Classroom groups enrolled students and scheduled assignments under a unique name.
type Classroom struct {
	Name        string        `json:"name"`
	Students    []*Student    `json:"students"`
	Assignments []*Assignment `json:"assignments"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Student is a learner enrolled in exactly one classroom. IDs are caller supplied and may repeat.
type Student struct {
	ID   string `json:"student_id"`
	Name string `json:"name"`
}

// Assignment is scheduled work in a classroom. Submissions point into the classroom's student list.
type Assignment struct {
	Details     string     `json:"details"`
	Deadline    string     `json:"deadline"`
	Submissions []*Student `json:"-"`
}

// NewClassroom returns an empty classroom.
func NewClassroom(name string) *Classroom {
	return &Classroom{
		Name:        name,
		Students:    make([]*Student, 0),
		Assignments: make([]*Assignment, 0),
		CreatedAt:   time.Now().UTC(),
	}
}

// Enroll appends a student in enrollment order.
func (c *Classroom) Enroll(student *Student) {
	c.Students = append(c.Students, student)
}

// Schedule appends an assignment in scheduling order.
func (c *Classroom) Schedule(assignment *Assignment) {
	c.Assignments = append(c.Assignments, assignment)
}

// StudentNames lists student names in enrollment order.
func (c *Classroom) StudentNames() []string {
	names := make([]string, 0, len(c.Students))
	for _, s := range c.Students {
		names = append(names, s.Name)
	}
	return names
}

// AssignmentDetails lists assignment details in scheduling order.
func (c *Classroom) AssignmentDetails() []string {
	details := make([]string, 0, len(c.Assignments))
	for _, a := range c.Assignments {
		details = append(details, a.Details)
	}
	return details
}

// FindAssignment returns the first assignment whose details match.
func (c *Classroom) FindAssignment(details string) (*Assignment, bool) {
	for _, a := range c.Assignments {
		if a.Details == details {
			return a, true
		}
	}
	return nil, false
}

// FindStudent returns the first enrolled student with the given id.
func (c *Classroom) FindStudent(studentID string) (*Student, bool) {
	for _, s := range c.Students {
		if s.ID == studentID {
			return s, true
		}
	}
	return nil, false
}

// Submit records a submission by student.
func (a *Assignment) Submit(student *Student) {
	a.Submissions = append(a.Submissions, student)
}

// SubmitterNames lists submitting students in submission order.
func (a *Assignment) SubmitterNames() []string {
	names := make([]string, 0, len(a.Submissions))
	for _, s := range a.Submissions {
		names = append(names, s.Name)
	}
	return names
}
