package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/noah-isme/virtual-classroom/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom/pkg/errors"
	"github.com/noah-isme/virtual-classroom/pkg/export"
	"github.com/noah-isme/virtual-classroom/pkg/requestid"
)

const (
	maxFilenameBytes    = 100
	maxFilenameAttempts = 100
)

type classroomReader interface {
	GetClassroom(ctx context.Context, name string) (*models.Classroom, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Path         string
	Type         models.ReportType
	Format       models.ReportFormat
	Rows         int
}

// ExportService renders classroom reports and stores them on disk.
type ExportService struct {
	classrooms classroomReader
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(classrooms classroomReader, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		classrooms: classrooms,
		storage:    storage,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate builds the requested report for a classroom and stores the rendered file.
func (s *ExportService) Generate(ctx context.Context, className string, reportType models.ReportType, format models.ReportFormat) (*ExportResult, error) {
	classroom, err := s.classrooms.GetClassroom(ctx, className)
	if err != nil {
		return nil, err
	}

	dataset, err := s.buildDataset(classroom, reportType)
	if err != nil {
		return nil, s.reject(ctx, className, reportType, format, err)
	}

	var payload []byte
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err := appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
		return nil, s.reject(ctx, className, reportType, format, err)
	}
	if err != nil {
		return nil, s.reject(ctx, className, reportType, format, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render report"))
	}

	relPath, err := s.save(classroom.Name, reportType, format, payload)
	if err != nil {
		return nil, s.reject(ctx, className, reportType, format, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to store report"))
	}

	s.logger.Info("report generated",
		zap.String("classroom", classroom.Name),
		zap.String("type", string(reportType)),
		zap.String("format", string(format)),
		zap.String("path", relPath),
		zap.String("request_id", requestid.Value(ctx)),
	)

	return &ExportResult{
		RelativePath: relPath,
		Path:         s.storage.Path(relPath),
		Type:         reportType,
		Format:       format,
		Rows:         len(dataset.Rows),
	}, nil
}

func (s *ExportService) reject(ctx context.Context, className string, reportType models.ReportType, format models.ReportFormat, err error) error {
	s.logger.Warn("report rejected",
		zap.String("classroom", className),
		zap.String("type", string(reportType)),
		zap.String("format", string(format)),
		zap.String("request_id", requestid.Value(ctx)),
		zap.Error(err),
	)
	return err
}

// save picks the first free filename so earlier reports are never replaced.
func (s *ExportService) save(className string, reportType models.ReportType, format models.ReportFormat, payload []byte) (string, error) {
	for attempt := 1; attempt <= maxFilenameAttempts; attempt++ {
		relPath, err := s.storage.Save(s.buildFilename(className, reportType, format, attempt), payload)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return relPath, err
	}
	return "", fmt.Errorf("no free report filename after %d attempts", maxFilenameAttempts)
}

func (s *ExportService) buildDataset(classroom *models.Classroom, reportType models.ReportType) (export.Dataset, error) {
	switch reportType {
	case models.ReportTypeRoster:
		return buildRosterDataset(classroom), nil
	case models.ReportTypeSubmissions:
		return buildSubmissionsDataset(classroom), nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report type %q", reportType))
	}
}

func buildRosterDataset(classroom *models.Classroom) export.Dataset {
	rows := make([][]string, 0, len(classroom.Students))
	for _, student := range classroom.Students {
		rows = append(rows, []string{student.ID, student.Name})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s roster", classroom.Name),
		Headers: []string{"student_id", "name"},
		Rows:    rows,
	}
}

// Assignments without submissions still get a row so the schedule is visible.
func buildSubmissionsDataset(classroom *models.Classroom) export.Dataset {
	rows := make([][]string, 0, len(classroom.Assignments))
	for _, assignment := range classroom.Assignments {
		if len(assignment.Submissions) == 0 {
			rows = append(rows, []string{assignment.Details, assignment.Deadline, "", ""})
			continue
		}
		for _, student := range assignment.Submissions {
			rows = append(rows, []string{assignment.Details, assignment.Deadline, student.ID, student.Name})
		}
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s submissions", classroom.Name),
		Headers: []string{"assignment", "deadline", "student_id", "student_name"},
		Rows:    rows,
	}
}

func (s *ExportService) buildFilename(className string, reportType models.ReportType, format models.ReportFormat, attempt int) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	if attempt > 1 {
		timestamp = fmt.Sprintf("%s_%d", timestamp, attempt)
	}
	return fmt.Sprintf("%s_%s_%s.%s", sanitizeFilename(className), reportType, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) <= maxFilenameBytes {
		return result
	}
	cut := maxFilenameBytes
	for cut > 0 && !utf8.RuneStart(result[cut]) {
		cut--
	}
	return result[:cut]
}
