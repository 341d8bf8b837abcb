package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/virtual-classroom/internal/models"
	"github.com/noah-isme/virtual-classroom/internal/repository"
	appErrors "github.com/noah-isme/virtual-classroom/pkg/errors"
)

// Operation labels used for notifications and metrics.
const (
	OpAddClassroom       = "add_classroom"
	OpListClassrooms     = "list_classrooms"
	OpRemoveClassroom    = "remove_classroom"
	OpAddStudent         = "add_student"
	OpListStudents       = "list_students"
	OpScheduleAssignment = "schedule_assignment"
	OpListAssignments    = "list_assignments"
	OpSubmitAssignment   = "submit_assignment"
	OpListSubmissions    = "list_submissions"
	OpGetClassroom       = "get_classroom"
)

type classroomRepository interface {
	ExistsByName(ctx context.Context, name string) bool
	FindByName(ctx context.Context, name string) (*models.Classroom, error)
	ListNames(ctx context.Context) []string
	Count(ctx context.Context) int
	Create(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, name string) error
}

type operationRecorder interface {
	ObserveOperation(operation string, err error, duration time.Duration)
	SetClassrooms(count int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, error, time.Duration) {}
func (nopRecorder) SetClassrooms(int)                             {}

// RegistryService owns all classroom state and enforces existence checks before mutating it.
// Every failure is reported through the notifier and returned; no failure mutates state.
type RegistryService struct {
	repo     classroomRepository
	notifier Notifier
	metrics  operationRecorder
}

// NewRegistryService constructs RegistryService.
func NewRegistryService(repo classroomRepository, notifier Notifier, metrics operationRecorder) *RegistryService {
	if repo == nil {
		repo = repository.NewClassroomRepository()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &RegistryService{repo: repo, notifier: notifier, metrics: metrics}
}

// AddClassroom creates an empty classroom under a unique name.
func (s *RegistryService) AddClassroom(ctx context.Context, name string) (*models.Classroom, error) {
	start := time.Now()
	if s.repo.ExistsByName(ctx, name) {
		return nil, s.fail(ctx, OpAddClassroom, start, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("Classroom '%s' already exists.", name)))
	}

	classroom := models.NewClassroom(name)
	if err := s.repo.Create(ctx, classroom); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.fail(ctx, OpAddClassroom, start, appErrors.Clone(appErrors.ErrDuplicateName, fmt.Sprintf("Classroom '%s' already exists.", name)))
		}
		return nil, s.fail(ctx, OpAddClassroom, start, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create classroom"))
	}
	s.metrics.SetClassrooms(s.repo.Count(ctx))
	s.succeed(ctx, OpAddClassroom, start, fmt.Sprintf("Classroom '%s' has been created.", name))
	return classroom, nil
}

// ListClassrooms returns classroom names in creation order.
func (s *RegistryService) ListClassrooms(ctx context.Context) []string {
	start := time.Now()
	names := s.repo.ListNames(ctx)
	s.succeed(ctx, OpListClassrooms, start, "")
	return names
}

// RemoveClassroom deletes a classroom with all of its students and assignments.
func (s *RegistryService) RemoveClassroom(ctx context.Context, name string) error {
	start := time.Now()
	if err := s.repo.Delete(ctx, name); err != nil {
		return s.fail(ctx, OpRemoveClassroom, start, s.classroomError(err, name))
	}
	s.metrics.SetClassrooms(s.repo.Count(ctx))
	s.succeed(ctx, OpRemoveClassroom, start, fmt.Sprintf("Classroom '%s' has been removed.", name))
	return nil
}

// AddStudent enrolls a new student into an existing classroom.
func (s *RegistryService) AddStudent(ctx context.Context, studentID, className, studentName string) (*models.Student, error) {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, className)
	if err != nil {
		return nil, s.fail(ctx, OpAddStudent, start, err)
	}

	student := &models.Student{ID: studentID, Name: studentName}
	classroom.Enroll(student)
	s.succeed(ctx, OpAddStudent, start, fmt.Sprintf("Student %s has been enrolled in %s.", studentID, className))
	return student, nil
}

// ListStudents returns student names in enrollment order, or an empty list when the classroom is unknown.
func (s *RegistryService) ListStudents(ctx context.Context, className string) ([]string, error) {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, className)
	if err != nil {
		return []string{}, s.fail(ctx, OpListStudents, start, err)
	}
	s.succeed(ctx, OpListStudents, start, "")
	return classroom.StudentNames(), nil
}

// ScheduleAssignment appends a new assignment to an existing classroom. The deadline is stored verbatim.
func (s *RegistryService) ScheduleAssignment(ctx context.Context, className, details, deadline string) (*models.Assignment, error) {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, className)
	if err != nil {
		return nil, s.fail(ctx, OpScheduleAssignment, start, err)
	}

	assignment := &models.Assignment{Details: details, Deadline: deadline, Submissions: make([]*models.Student, 0)}
	classroom.Schedule(assignment)
	s.succeed(ctx, OpScheduleAssignment, start, fmt.Sprintf("Assignment for %s has been scheduled.", className))
	return assignment, nil
}

// ListAssignments returns assignment details in scheduling order, or an empty list when the classroom is unknown.
func (s *RegistryService) ListAssignments(ctx context.Context, className string) ([]string, error) {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, className)
	if err != nil {
		return []string{}, s.fail(ctx, OpListAssignments, start, err)
	}
	s.succeed(ctx, OpListAssignments, start, "")
	return classroom.AssignmentDetails(), nil
}

// SubmitAssignment records a submission on the first assignment matching details,
// by the first student in the same classroom matching studentID.
func (s *RegistryService) SubmitAssignment(ctx context.Context, studentID, className, details string) error {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, className)
	if err != nil {
		return s.fail(ctx, OpSubmitAssignment, start, err)
	}

	assignment, ok := classroom.FindAssignment(details)
	if !ok {
		return s.fail(ctx, OpSubmitAssignment, start, appErrors.Clone(appErrors.ErrAssignmentNotFound, fmt.Sprintf("Assignment '%s' not found in %s.", details, className)))
	}
	student, ok := classroom.FindStudent(studentID)
	if !ok {
		return s.fail(ctx, OpSubmitAssignment, start, appErrors.Clone(appErrors.ErrStudentNotEnrolled, fmt.Sprintf("Student %s is not enrolled in %s.", studentID, className)))
	}

	assignment.Submit(student)
	s.succeed(ctx, OpSubmitAssignment, start, fmt.Sprintf("Assignment submitted by Student %s in %s.", studentID, className))
	return nil
}

// ListSubmissions returns the names of students who submitted the first assignment matching details.
func (s *RegistryService) ListSubmissions(ctx context.Context, className, details string) ([]string, error) {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, className)
	if err != nil {
		return []string{}, s.fail(ctx, OpListSubmissions, start, err)
	}
	assignment, ok := classroom.FindAssignment(details)
	if !ok {
		return []string{}, s.fail(ctx, OpListSubmissions, start, appErrors.Clone(appErrors.ErrAssignmentNotFound, fmt.Sprintf("Assignment '%s' not found in %s.", details, className)))
	}
	s.succeed(ctx, OpListSubmissions, start, "")
	return assignment.SubmitterNames(), nil
}

// GetClassroom returns the classroom record for read-only use such as reporting.
func (s *RegistryService) GetClassroom(ctx context.Context, name string) (*models.Classroom, error) {
	start := time.Now()
	classroom, err := s.findClassroom(ctx, name)
	if err != nil {
		return nil, s.fail(ctx, OpGetClassroom, start, err)
	}
	s.succeed(ctx, OpGetClassroom, start, "")
	return classroom, nil
}

// CountClassrooms returns the number of registered classrooms.
func (s *RegistryService) CountClassrooms(ctx context.Context) int {
	return s.repo.Count(ctx)
}

func (s *RegistryService) findClassroom(ctx context.Context, name string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, s.classroomError(err, name)
	}
	return classroom, nil
}

func (s *RegistryService) classroomError(err error, name string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Classroom '%s' not found.", name))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load classroom")
}

func (s *RegistryService) succeed(ctx context.Context, op string, start time.Time, msg string) {
	s.metrics.ObserveOperation(op, nil, time.Since(start))
	if msg != "" {
		s.notifier.Info(ctx, msg)
	}
}

func (s *RegistryService) fail(ctx context.Context, op string, start time.Time, err error) error {
	s.metrics.ObserveOperation(op, err, time.Since(start))
	s.notifier.Error(ctx, err.Error())
	return err
}
