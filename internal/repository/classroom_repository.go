package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/virtual-classroom/internal/models"
)

var (
	// ErrNotFound is returned when no classroom is stored under the requested name.
	ErrNotFound = errors.New("classroom not found")
	// ErrDuplicate is returned when a classroom name is already taken.
	ErrDuplicate = errors.New("classroom already exists")
)

// ClassroomRepository keeps classrooms in memory, keyed by name and ordered by creation.
type ClassroomRepository struct {
	classrooms map[string]*models.Classroom
	order      []string
}

// NewClassroomRepository constructs an empty classroom repository.
func NewClassroomRepository() *ClassroomRepository {
	return &ClassroomRepository{
		classrooms: make(map[string]*models.Classroom),
		order:      make([]string, 0),
	}
}

// ExistsByName reports whether a classroom is stored under name.
func (r *ClassroomRepository) ExistsByName(ctx context.Context, name string) bool {
	_, ok := r.classrooms[name]
	return ok
}

// FindByName returns the stored classroom.
func (r *ClassroomRepository) FindByName(ctx context.Context, name string) (*models.Classroom, error) {
	classroom, ok := r.classrooms[name]
	if !ok {
		return nil, ErrNotFound
	}
	return classroom, nil
}

// ListNames returns classroom names in creation order.
func (r *ClassroomRepository) ListNames(ctx context.Context) []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of stored classrooms.
func (r *ClassroomRepository) Count(ctx context.Context) int {
	return len(r.order)
}

// Create stores a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if _, ok := r.classrooms[classroom.Name]; ok {
		return ErrDuplicate
	}
	r.classrooms[classroom.Name] = classroom
	r.order = append(r.order, classroom.Name)
	return nil
}

// Delete drops a classroom together with its students and assignments.
func (r *ClassroomRepository) Delete(ctx context.Context, name string) error {
	if _, ok := r.classrooms[name]; !ok {
		return ErrNotFound
	}
	delete(r.classrooms, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
