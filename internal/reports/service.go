package reports

import (
	"context"
	"fmt"

	"github.com/hlefebvre/coliving-backend/internal/auditlog"
)

type Service interface {
	Export(ctx context.Context, reportType, format string, filter Filter, userID uint, ip string) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	exporter Exporter
	auditSvc auditlog.Service
}

func NewService(repo Repository, exporter Exporter, auditSvc auditlog.Service) Service {
	return &service{repo: repo, exporter: exporter, auditSvc: auditSvc}
}

func (s *service) Export(ctx context.Context, reportType, format string, filter Filter, userID uint, ip string) ([]byte, string, string, error) {
	var data ReportData
	var err error

	switch reportType {
	case ReportTypeBookings:
		data.Bookings, err = s.repo.BookingRows(ctx, filter)
	case ReportTypeRooms:
		data.Rooms, err = s.repo.RoomRows(ctx)
	case ReportTypeContacts:
		data.Contacts, err = s.repo.ContactRows(ctx, filter)
	case ReportTypePayments:
		data.Payments, err = s.repo.PaymentRows(ctx, filter)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to collect report rows: %w", err)
	}

	payload, filename, contentType, err := s.exporter.Export(reportType, format, data)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, "report_export", map[string]interface{}{"type": reportType, "format": format, "error": err.Error()}, ip, "failure")
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, &userID, "report_export", map[string]interface{}{"type": reportType, "format": format, "filename": filename}, ip, "success")
	return payload, filename, contentType, nil
}
