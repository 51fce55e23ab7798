package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/export"
)

type tabularExporter interface {
	Render(data export.Dataset, head export.Letterhead) ([]byte, error)
}

type eventAttendanceLister interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.Attendance, error)
}

// ExportResult carries rendered document bytes plus delivery metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders approved-student registers and per-event
// participant grids as CSV or PDF documents carrying the department
// letterhead.
type ExportService struct {
	submissions   approvedLister
	events        eventFinder
	participation selectedParticipantLister
	attendance    eventAttendanceLister
	csv           tabularExporter
	pdf           tabularExporter
	logger        *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(submissions approvedLister, events eventFinder, participation selectedParticipantLister, attendance eventAttendanceLister, csv, pdf tabularExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		submissions:   submissions,
		events:        events,
		participation: participation,
		attendance:    attendance,
		csv:           csv,
		pdf:           pdf,
		logger:        logger,
	}
}

func (s *ExportService) exporterFor(format string) (tabularExporter, string, string, error) {
	switch format {
	case "csv":
		return s.csv, "text/csv", "csv", nil
	case "pdf":
		return s.pdf, "application/pdf", "pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be 'csv' or 'pdf'")
	}
}

// ApprovedStudents renders the approved-student register in the requested
// format, optionally filtered by branch. Rows are ordered by serial number.
func (s *ExportService) ApprovedStudents(ctx context.Context, format, branch string) (*ExportResult, error) {
	exporter, contentType, extension, err := s.exporterFor(format)
	if err != nil {
		return nil, err
	}

	students, err := s.submissions.ListApproved(ctx, branch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved students")
	}

	headers := []string{"SLN", "Name", "USN", "Branch", "Sem", "Blood Group", "Phone"}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		sln := ""
		if student.SerialNumber != nil {
			sln = fmt.Sprintf("%d", *student.SerialNumber)
		}
		rows = append(rows, map[string]string{
			"SLN":         sln,
			"Name":        student.StudentName,
			"USN":         student.USN,
			"Branch":      student.Branch,
			"Sem":         fmt.Sprintf("%d", student.Semester),
			"Blood Group": student.BloodGroup,
			"Phone":       student.Phone,
		})
	}

	subtitle := fmt.Sprintf("Approved Student Register - Generated %s", time.Now().Format("02/01/2006"))
	if branch != "" {
		subtitle = fmt.Sprintf("Approved Student Register (%s) - Generated %s", branch, time.Now().Format("02/01/2006"))
	}
	content, err := exporter.Render(
		export.Dataset{Headers: headers, Rows: rows},
		export.Letterhead{Title: "RV College of Engineering - Department of Physical Education", Subtitle: subtitle},
	)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("export rendered",
		zap.String("format", format),
		zap.String("branch", branch),
		zap.Int("rows", len(rows)))
	return &ExportResult{
		Content:     content,
		ContentType: contentType,
		Filename:    fmt.Sprintf("approved_students_%s.%s", time.Now().Format("20060102"), extension),
	}, nil
}

// EventParticipants renders the selected participants of one event as a grid
// with a column per event day: "P" for present, "Absent", "-" for unmarked.
func (s *ExportService) EventParticipants(ctx context.Context, eventID int64, format string) (*ExportResult, error) {
	exporter, contentType, extension, err := s.exporterFor(format)
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	selected := models.ParticipationSelected
	participants, err := s.participation.List(ctx, models.ParticipationFilter{EventID: eventID, Status: &selected})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}

	marks, err := s.attendance.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	markByKey := make(map[string]models.AttendanceStatus, len(marks))
	for _, mark := range marks {
		if mark.Status != nil {
			markByKey[mark.USN+"|"+mark.Date.Format("2006-01-02")] = *mark.Status
		}
	}

	headers := []string{"#", "USN", "Student Name", "Selected On"}
	var dates []time.Time
	for d := event.StartDate; !d.After(event.EndDate); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
		headers = append(headers, d.Format("02/01"))
	}

	rows := make([]map[string]string, 0, len(participants))
	for i, p := range participants {
		row := map[string]string{
			"#":            strconv.Itoa(i + 1),
			"USN":          p.USN,
			"Student Name": p.StudentName,
		}
		if p.ProcessedAt != nil {
			row["Selected On"] = p.ProcessedAt.Format("02/01/2006")
		}
		for _, d := range dates {
			cell := "-"
			switch markByKey[p.USN+"|"+d.Format("2006-01-02")] {
			case models.AttendancePresent:
				cell = "P"
			case models.AttendanceAbsent:
				cell = "Absent"
			}
			row[d.Format("02/01")] = cell
		}
		rows = append(rows, row)
	}

	location := ""
	if event.Location != nil {
		location = *event.Location
	}
	content, err := exporter.Render(
		export.Dataset{Headers: headers, Rows: rows},
		export.Letterhead{
			Title:    fmt.Sprintf("Event: %s", event.Name),
			Subtitle: fmt.Sprintf("Location: %s | Date: %s - %s", location, event.StartDate.Format("02/01/2006"), event.EndDate.Format("02/01/2006")),
		},
	)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("participants export rendered",
		zap.Int64("event_id", eventID),
		zap.String("format", format),
		zap.Int("rows", len(rows)))
	return &ExportResult{
		Content:     content,
		ContentType: contentType,
		Filename:    fmt.Sprintf("event_%d_participants_%s.%s", eventID, time.Now().Format("20060102"), extension),
	}, nil
}