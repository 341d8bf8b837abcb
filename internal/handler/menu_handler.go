package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/virtual-classroom/internal/models"
	"github.com/noah-isme/virtual-classroom/internal/service"
	"github.com/noah-isme/virtual-classroom/pkg/requestid"
)

var errInputClosed = errors.New("input closed")

// MenuHandler drives the registry from a line-based interactive menu, one operation per round.
type MenuHandler struct {
	registry *service.RegistryService
	exports  *service.ExportService
	metrics  *service.MetricsService
	in       *bufio.Reader
	out      io.Writer
}

// NewMenuHandler constructs a menu handler. exports and metrics are optional; their options are hidden when nil.
func NewMenuHandler(registry *service.RegistryService, exports *service.ExportService, metrics *service.MetricsService, in io.Reader, out io.Writer) *MenuHandler {
	return &MenuHandler{
		registry: registry,
		exports:  exports,
		metrics:  metrics,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Run loops until the user exits or input ends.
func (h *MenuHandler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.printMenu()
		choice, err := h.prompt("Enter your choice: ")
		if err == nil {
			err = h.dispatch(requestid.With(ctx, requestid.New()), strings.TrimSpace(choice))
		}
		if errors.Is(err, errInputClosed) {
			h.println("Exiting Virtual Classroom Manager.")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *MenuHandler) printMenu() {
	h.println("")
	h.println("Virtual Classroom Manager")
	h.println("1. Add Classroom")
	h.println("2. List Classrooms")
	h.println("3. Remove Classroom")
	h.println("4. Add Student")
	h.println("5. List Students")
	h.println("6. Schedule Assignment")
	h.println("7. List Assignments")
	h.println("8. Submit Assignment")
	h.println("9. Exit")
	if h.exports != nil {
		h.println("10. Export Classroom Report")
	}
	if h.metrics != nil {
		h.println("11. Show Statistics")
	}
}

func (h *MenuHandler) dispatch(ctx context.Context, choice string) error {
	switch {
	case choice == "1":
		return h.addClassroom(ctx)
	case choice == "2":
		h.printList("Classrooms", h.registry.ListClassrooms(ctx))
		return nil
	case choice == "3":
		return h.removeClassroom(ctx)
	case choice == "4":
		return h.addStudent(ctx)
	case choice == "5":
		return h.listStudents(ctx)
	case choice == "6":
		return h.scheduleAssignment(ctx)
	case choice == "7":
		return h.listAssignments(ctx)
	case choice == "8":
		return h.submitAssignment(ctx)
	case choice == "9":
		return errInputClosed
	case choice == "10" && h.exports != nil:
		return h.exportReport(ctx)
	case choice == "11" && h.metrics != nil:
		h.printStats(h.registry.CountClassrooms(ctx), h.metrics.Snapshot())
		return nil
	default:
		h.println("Invalid choice. Please try again.")
		return nil
	}
}

func (h *MenuHandler) addClassroom(ctx context.Context) error {
	name, err := h.prompt("Enter classroom name: ")
	if err != nil {
		return err
	}
	if _, err := h.registry.AddClassroom(ctx, name); err != nil {
		h.printError(err)
		return nil
	}
	h.printf("Classroom '%s' has been created.\n", name)
	return nil
}

func (h *MenuHandler) removeClassroom(ctx context.Context) error {
	name, err := h.prompt("Enter classroom name to remove: ")
	if err != nil {
		return err
	}
	if err := h.registry.RemoveClassroom(ctx, name); err != nil {
		h.printError(err)
		return nil
	}
	h.printf("Classroom '%s' has been removed.\n", name)
	return nil
}

func (h *MenuHandler) addStudent(ctx context.Context) error {
	answers, err := h.promptAll("Enter student ID: ", "Enter classroom name to enroll in: ", "Enter student name: ")
	if err != nil {
		return err
	}
	studentID, className, studentName := answers[0], answers[1], answers[2]
	if _, err := h.registry.AddStudent(ctx, studentID, className, studentName); err != nil {
		h.printError(err)
		return nil
	}
	h.printf("Student %s has been enrolled in %s.\n", studentID, className)
	return nil
}

func (h *MenuHandler) listStudents(ctx context.Context) error {
	className, err := h.prompt("Enter classroom name to list students: ")
	if err != nil {
		return err
	}
	students, err := h.registry.ListStudents(ctx, className)
	if err != nil {
		h.printError(err)
	}
	h.printList("Students", students)
	return nil
}

func (h *MenuHandler) scheduleAssignment(ctx context.Context) error {
	answers, err := h.promptAll("Enter classroom name to schedule assignment: ", "Enter assignment details: ", "Enter assignment deadline (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	className, details, deadline := answers[0], answers[1], answers[2]
	if _, err := h.registry.ScheduleAssignment(ctx, className, details, deadline); err != nil {
		h.printError(err)
		return nil
	}
	h.printf("Assignment for %s has been scheduled.\n", className)
	return nil
}

func (h *MenuHandler) listAssignments(ctx context.Context) error {
	className, err := h.prompt("Enter classroom name to list assignments: ")
	if err != nil {
		return err
	}
	assignments, err := h.registry.ListAssignments(ctx, className)
	if err != nil {
		h.printError(err)
	}
	h.printList("Assignments", assignments)
	return nil
}

func (h *MenuHandler) submitAssignment(ctx context.Context) error {
	answers, err := h.promptAll("Enter student ID: ", "Enter classroom name: ", "Enter assignment details: ")
	if err != nil {
		return err
	}
	studentID, className, details := answers[0], answers[1], answers[2]
	if err := h.registry.SubmitAssignment(ctx, studentID, className, details); err != nil {
		h.printError(err)
		return nil
	}
	h.printf("Assignment submitted by Student %s in %s.\n", studentID, className)
	return nil
}

func (h *MenuHandler) exportReport(ctx context.Context) error {
	answers, err := h.promptAll("Enter classroom name: ", "Enter report type (roster/submissions): ", "Enter format (csv/pdf): ")
	if err != nil {
		return err
	}
	reportType := models.ReportType(strings.ToLower(strings.TrimSpace(answers[1])))
	format := models.ReportFormat(strings.ToLower(strings.TrimSpace(answers[2])))
	result, err := h.exports.Generate(ctx, answers[0], reportType, format)
	if err != nil {
		h.printError(err)
		return nil
	}
	h.printf("Report saved to %s (%d rows).\n", result.Path, result.Rows)
	return nil
}

func (h *MenuHandler) printStats(classrooms int, stats models.RegistryStats) {
	h.printf("Statistics as of %s\n", stats.GeneratedAt.Format(time.RFC3339))
	h.printf("Classrooms: %d\n", classrooms)
	h.printf("Operations: %d (%d failed)\n", stats.OperationsTotal, stats.OperationsFailed)
	ops := make([]string, 0, len(stats.ByOperation))
	for op := range stats.ByOperation {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		h.printf("  %s: %d\n", op, stats.ByOperation[op])
	}
}

func (h *MenuHandler) prompt(label string) (string, error) {
	fmt.Fprint(h.out, label)
	line, err := h.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	if err != nil && line == "" {
		h.println("")
		return "", errInputClosed
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (h *MenuHandler) promptAll(labels ...string) ([]string, error) {
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		answer, err := h.prompt(label)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (h *MenuHandler) printList(label string, items []string) {
	h.printf("%s: [%s]\n", label, strings.Join(items, ", "))
}

func (h *MenuHandler) printError(err error) {
	h.printf("Error: %s\n", err.Error())
}

func (h *MenuHandler) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.out, format, args...)
}

func (h *MenuHandler) println(line string) {
	fmt.Fprintln(h.out, line)
}
