package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Exporter renders report rows into a downloadable file.
type Exporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

func (e *exporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeBookings:
		return e.exportBookings(format, timestamp, data.Bookings)
	case ReportTypeRooms:
		return e.exportRooms(format, timestamp, data.Rooms)
	case ReportTypeContacts:
		return e.exportContacts(format, timestamp, data.Contacts)
	case ReportTypePayments:
		return e.exportPayments(format, timestamp, data.Payments)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

func endDateLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// ============================
// BOOKINGS
// ============================

func (e *exporter) exportBookings(format, timestamp string, rows []BookingReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportBookingsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportBookingsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		data, err := e.exportBookingsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.csv", timestamp), "text/csv", nil
	}
}

func (e *exporter) exportBookingsCSV(rows []BookingReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"ID", "Room", "Tenant", "Email", "Start", "End", "Status", "Total"})
	for _, r := range rows {
		w.Write([]string{
			fmt.Sprint(r.ID),
			fmt.Sprint(r.RoomNumber),
			r.TenantName,
			r.TenantEmail,
			r.StartDate.Format("2006-01-02"),
			endDateLabel(r.EndDate),
			r.Status,
			fmt.Sprintf("%.2f", r.TotalAmount),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (e *exporter) exportBookingsExcel(rows []BookingReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Room", "Tenant", "Email", "Start", "End", "Status", "Total"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.RoomNumber)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.TenantName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.TenantEmail)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.StartDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), endDateLabel(r.EndDate))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.TotalAmount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportBookingsPDF(rows []BookingReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, tr("Rapport des réservations"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	headers := []string{"ID", "Chambre", "Locataire", "Email", "Début", "Fin", "Statut", "Total"}
	widths := []float64{15, 20, 50, 60, 25, 25, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprint(r.RoomNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(r.TenantName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.TenantEmail, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.StartDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 6, endDateLabel(r.EndDate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[7], 6, fmt.Sprintf("%.2f", r.TotalAmount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================
// ROOMS
// ============================

func (e *exporter) exportRooms(format, timestamp string, rows []RoomReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportRoomsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("rooms_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportRoomsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("rooms_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		data, err := e.exportRoomsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("rooms_report_%s.csv", timestamp), "text/csv", nil
	}
}

func (e *exporter) exportRoomsCSV(rows []RoomReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"ID", "Number", "Name", "Floor", "Surface", "Price", "Status", "Active"})
	for _, r := range rows {
		w.Write([]string{
			fmt.Sprint(r.ID),
			fmt.Sprint(r.Number),
			r.Name,
			fmt.Sprint(r.Floor),
			fmt.Sprintf("%.1f", r.Surface),
			fmt.Sprintf("%.2f", r.MonthlyPrice),
			r.Status,
			fmt.Sprint(r.IsActive),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (e *exporter) exportRoomsExcel(rows []RoomReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Rooms"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Number", "Name", "Floor", "Surface", "Price", "Status", "Active"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Number)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Name)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Floor)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Surface)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.MonthlyPrice)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.IsActive)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportRoomsPDF(rows []RoomReportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, tr("Rapport des chambres"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	headers := []string{"ID", "Numéro", "Nom", "Étage", "Surface", "Loyer", "Statut"}
	widths := []float64{15, 20, 50, 18, 22, 25, 35}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprint(r.Number), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(r.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprint(r.Floor), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.1f", r.Surface), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", r.MonthlyPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================
// CONTACTS
// ============================

func (e *exporter) exportContacts(format, timestamp string, rows []ContactReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportContactsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("contacts_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportContactsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("contacts_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		data, err := e.exportContactsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("contacts_report_%s.csv", timestamp), "text/csv", nil
	}
}

func (e *exporter) exportContactsCSV(rows []ContactReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"ID", "Name", "Email", "Phone", "Subject", "Status", "Date"})
	for _, r := range rows {
		w.Write([]string{
			fmt.Sprint(r.ID),
			r.Name,
			r.Email,
			r.Phone,
			r.Subject,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (e *exporter) exportContactsExcel(rows []ContactReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Contacts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Name", "Email", "Phone", "Subject", "Status", "Date"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Email)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Subject)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportContactsPDF(rows []ContactReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, tr("Rapport des messages de contact"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	headers := []string{"ID", "Nom", "Email", "Téléphone", "Sujet", "Statut", "Date"}
	widths := []float64{15, 45, 60, 30, 60, 25, 35}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(r.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, tr(r.Subject), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.CreatedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================
// PAYMENTS
// ============================

func (e *exporter) exportPayments(format, timestamp string, rows []PaymentReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportPaymentsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("payments_report_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatPDF:
		data, err := e.exportPaymentsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("payments_report_%s.pdf", timestamp), "application/pdf", nil
	default:
		data, err := e.exportPaymentsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("payments_report_%s.csv", timestamp), "text/csv", nil
	}
}

func paidAtLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func (e *exporter) exportPaymentsCSV(rows []PaymentReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"ID", "Booking", "Tenant", "Amount", "Type", "Status", "Paid at"})
	for _, r := range rows {
		w.Write([]string{
			fmt.Sprint(r.ID),
			fmt.Sprint(r.BookingID),
			r.TenantName,
			fmt.Sprintf("%.2f", r.Amount),
			r.Type,
			r.Status,
			paidAtLabel(r.PaidAt),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (e *exporter) exportPaymentsExcel(rows []PaymentReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Booking", "Tenant", "Amount", "Type", "Status", "Paid at"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.BookingID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.TenantName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Type)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), paidAtLabel(r.PaidAt))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportPaymentsPDF(rows []PaymentReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, tr("Rapport des paiements"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	headers := []string{"ID", "Réservation", "Locataire", "Montant", "Type", "Statut", "Payé le"}
	widths := []float64{15, 30, 60, 30, 30, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(r.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprint(r.BookingID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(r.TenantName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", r.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.Type, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, paidAtLabel(r.PaidAt), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
