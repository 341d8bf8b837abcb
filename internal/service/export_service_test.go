package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/virtual-classroom/internal/models"
	appErrors "github.com/noah-isme/virtual-classroom/pkg/errors"
	"github.com/noah-isme/virtual-classroom/pkg/export"
	"github.com/noah-isme/virtual-classroom/pkg/requestid"
	"github.com/noah-isme/virtual-classroom/pkg/storage"
)

type failingRenderer struct{}

func (failingRenderer) Render(data export.Dataset) ([]byte, error) {
	return nil, errors.New("renderer broken")
}

func newExportServiceForTest(t *testing.T) (*ExportService, *RegistryService, *storage.LocalStorage) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	registry := NewRegistryService(nil, nil, nil)
	_, err = registry.AddClassroom(ctx, "Math 101")
	require.NoError(t, err)
	_, err = registry.AddStudent(ctx, "S1", "Math 101", "Alice")
	require.NoError(t, err)
	_, err = registry.AddStudent(ctx, "S2", "Math 101", "Bob")
	require.NoError(t, err)
	_, err = registry.ScheduleAssignment(ctx, "Math 101", "HW1", "2024-01-01")
	require.NoError(t, err)
	_, err = registry.ScheduleAssignment(ctx, "Math 101", "HW2", "2024-02-01")
	require.NoError(t, err)
	require.NoError(t, registry.SubmitAssignment(ctx, "S2", "Math 101", "HW1"))
	require.NoError(t, registry.SubmitAssignment(ctx, "S1", "Math 101", "HW1"))

	svc := NewExportService(registry, store, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, registry, store
}

func TestExportServiceGenerateRosterCSV(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), "Math 101", models.ReportTypeRoster, models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "math_101_roster_20240102_030405.csv", result.RelativePath)
	assert.Equal(t, 2, result.Rows)

	raw, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, "student_id,name\nS1,Alice\nS2,Bob\n", string(raw))
}

func TestExportServiceGenerateSubmissionsCSV(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), "Math 101", models.ReportTypeSubmissions, models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)

	raw, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	want := "assignment,deadline,student_id,student_name\n" +
		"HW1,2024-01-01,S2,Bob\n" +
		"HW1,2024-01-01,S1,Alice\n" +
		"HW2,2024-02-01,,\n"
	assert.Equal(t, want, string(raw))
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, _, store := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), "Math 101", models.ReportTypeSubmissions, models.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatPDF, result.Format)

	raw, err := os.ReadFile(store.Path(result.RelativePath))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestExportServiceErrors(t *testing.T) {
	svc, _, store := newExportServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "Ghost", models.ReportTypeRoster, models.ReportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Generate(ctx, "Math 101", models.ReportType("grades"), models.ReportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Generate(ctx, "Math 101", models.ReportTypeRoster, models.ReportFormat("xlsx"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	broken := NewExportService(svc.classrooms, store, nil, failingRenderer{}, nil)
	_, err = broken.Generate(ctx, "Math 101", models.ReportTypeRoster, models.ReportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names, "failed exports must not leave files behind")
}

func TestExportServiceKeepsEarlierReports(t *testing.T) {
	svc, registry, store := newExportServiceForTest(t)
	ctx := context.Background()
	_, err := registry.AddClassroom(ctx, "math 101")
	require.NoError(t, err)
	_, err = registry.AddStudent(ctx, "S9", "math 101", "Zoe")
	require.NoError(t, err)

	first, err := svc.Generate(ctx, "Math 101", models.ReportTypeRoster, models.ReportFormatCSV)
	require.NoError(t, err)
	second, err := svc.Generate(ctx, "math 101", models.ReportTypeRoster, models.ReportFormatCSV)
	require.NoError(t, err)
	third, err := svc.Generate(ctx, "Math 101", models.ReportTypeRoster, models.ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "math_101_roster_20240102_030405.csv", first.RelativePath)
	assert.Equal(t, "math_101_roster_20240102_030405_2.csv", second.RelativePath)
	assert.Equal(t, "math_101_roster_20240102_030405_3.csv", third.RelativePath)

	raw, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "student_id,name\nS1,Alice\nS2,Bob\n", string(raw))
	raw, err = os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Equal(t, "student_id,name\nS9,Zoe\n", string(raw))

	names, err := store.List()
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestExportServiceLogsRejectedReports(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)
	core, logs := observer.New(zapcore.InfoLevel)
	svc.logger = zap.New(core)
	ctx := requestid.With(context.Background(), "round-1")

	_, err := svc.Generate(ctx, "Math 101", models.ReportType("grades"), models.ReportFormatCSV)
	require.Error(t, err)
	_, err = svc.Generate(ctx, "Math 101", models.ReportTypeRoster, models.ReportFormat("xlsx"))
	require.Error(t, err)

	rejected := logs.FilterMessage("report rejected").All()
	require.Len(t, rejected, 2)
	assert.Equal(t, zapcore.WarnLevel, rejected[0].Level)
	assert.Equal(t, "grades", rejected[0].ContextMap()["type"])
	assert.Equal(t, "xlsx", rejected[1].ContextMap()["format"])
	assert.Equal(t, "round-1", rejected[1].ContextMap()["request_id"])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename("  "))
	assert.Equal(t, "grade_10-a", sanitizeFilename("Grade 10/A"))
	assert.Equal(t, "a.b", sanitizeFilename("a..b"))

	long := sanitizeFilename(strings.Repeat("a", 99) + "éé")
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, strings.Repeat("a", 99), long)
	assert.Len(t, sanitizeFilename(strings.Repeat("b", 150)), maxFilenameBytes)
}
