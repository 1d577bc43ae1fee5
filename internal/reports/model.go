package reports

import "time"

// Report types and formats accepted by GET /reports
const (
	ReportTypeBookings = "bookings"
	ReportTypeRooms    = "rooms"
	ReportTypeContacts = "contacts"
	ReportTypePayments = "payments"

	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

type BookingReportRow struct {
	ID          uint
	RoomNumber  int
	TenantName  string
	TenantEmail string
	StartDate   time.Time
	EndDate     *time.Time
	Status      string
	TotalAmount float64
}

type RoomReportRow struct {
	ID           uint
	Number       int
	Name         string
	Floor        int
	Surface      float64
	MonthlyPrice float64
	Status       string
	IsActive     bool
}

type ContactReportRow struct {
	ID        uint
	Name      string
	Email     string
	Phone     string
	Subject   string
	Status    string
	CreatedAt time.Time
}

type PaymentReportRow struct {
	ID         uint
	BookingID  uint
	TenantName string
	Amount     float64
	Type       string
	Status     string
	PaidAt     *time.Time
}

// ReportData aggregates all row types one export run may need.
type ReportData struct {
	Bookings []BookingReportRow
	Rooms    []RoomReportRow
	Contacts []ContactReportRow
	Payments []PaymentReportRow
}

type Filter struct {
	From *time.Time
	To   *time.Time
}
