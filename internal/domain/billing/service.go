package billing

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

// PatientDirectory is the read-only patient lookup the billing engine
// depends on.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AdmissionInfo is the projection of an admission the billing engine
// needs to compute a room charge.
type AdmissionInfo struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	RoomType      string
	AdmissionTime time.Time
	DischargeTime *time.Time
}

// AdmissionSource resolves admissions. FindAdmission returns
// (nil, nil) when the admission does not exist.
type AdmissionSource interface {
	FindAdmission(ctx context.Context, id uuid.UUID) (*AdmissionInfo, error)
}

// PricedService is a catalog entry the billing engine resolved by name.
type PricedService struct {
	ID   uuid.UUID
	Name string
	Cost float64
}

// PriceList resolves active catalog entries by exact name, returning
// (nil, nil) on no match.
type PriceList interface {
	FindActiveService(ctx context.Context, name string) (*PricedService, error)
}

// TreatmentInfo is the projection of a treatment the billing engine
// prices by name.
type TreatmentInfo struct {
	ID   uuid.UUID
	Name string
	Date time.Time
}

// TreatmentSource lists a patient's treatments for the charge pass.
type TreatmentSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*TreatmentInfo, error)
}

type Service struct {
	bills      Repository
	patients   PatientDirectory
	admissions AdmissionSource
	prices     PriceList
	treatments TreatmentSource
	tx         db.TxManager
	logger     zerolog.Logger

	// allowOverpayment accepts payments exceeding the outstanding
	// balance with a warning instead of rejecting them.
	allowOverpayment bool
}

func NewService(bills Repository, patients PatientDirectory, admissions AdmissionSource, prices PriceList, treatments TreatmentSource, tx db.TxManager, logger zerolog.Logger, allowOverpayment bool) *Service {
	return &Service{
		bills:            bills,
		patients:         patients,
		admissions:       admissions,
		prices:           prices,
		treatments:       treatments,
		tx:               tx,
		logger:           logger,
		allowOverpayment: allowOverpayment,
	}
}

// roomChargeName builds the catalog name the room charge is priced
// under, e.g. "ICU Daily Charge".
func roomChargeName(roomType string) string {
	return roomType + " Daily Charge"
}

// stayedDays is the billed length of stay: the duration rounded up to
// whole days, never less than one.
func stayedDays(admitted, discharged time.Time) int {
	days := int(math.Ceil(discharged.Sub(admitted).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// GenerateBill collects billable items in two passes (room charge for
// a completed stay, then priced treatments) and inserts the bill with
// its items in one transaction. Treatments without a matching priced
// service are skipped, not failed.
func (s *Service) GenerateBill(ctx context.Context, req *GenerateBillRequest) (*Bill, error) {
	if req.BillDate.IsZero() {
		return nil, apperr.Invalid("bill_date is required")
	}
	if req.DueDate != nil && req.DueDate.Before(req.BillDate) {
		return nil, apperr.Invalid("due_date must not be before bill_date")
	}

	exists, err := s.patients.PatientExists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("patient %s not found", req.PatientID)
	}

	var adm *AdmissionInfo
	if req.AdmissionID != nil {
		adm, err = s.admissions.FindAdmission(ctx, *req.AdmissionID)
		if err != nil {
			return nil, err
		}
		if adm == nil {
			return nil, apperr.NotFound("admission %s not found", *req.AdmissionID)
		}
		if adm.PatientID != req.PatientID {
			return nil, apperr.Invalid("admission %s does not belong to patient %s", adm.ID, req.PatientID)
		}
	}

	var items []*BillItem

	// Room-charge pass. Only completed stays are billable.
	if adm != nil && adm.DischargeTime != nil {
		name := roomChargeName(adm.RoomType)
		svc, err := s.prices.FindActiveService(ctx, name)
		if err != nil {
			return nil, err
		}
		if svc != nil && svc.Cost > 0 {
			days := stayedDays(adm.AdmissionTime, *adm.DischargeTime)
			serviceID := svc.ID
			items = append(items, &BillItem{
				ServiceID:   &serviceID,
				Description: name,
				Quantity:    days,
				UnitPrice:   svc.Cost,
				LineTotal:   float64(days) * svc.Cost,
			})
		} else {
			s.logger.Warn().
				Str("admission_id", adm.ID.String()).
				Str("service_name", name).
				Msg("no priced daily charge for room type, stay not billed")
		}
	}

	// Treatment pass. Pricing is best-effort by name.
	treatments, err := s.treatments.ListByPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	for _, tr := range treatments {
		svc, err := s.prices.FindActiveService(ctx, tr.Name)
		if err != nil {
			return nil, err
		}
		if svc == nil || svc.Cost <= 0 {
			s.logger.Warn().
				Str("treatment_id", tr.ID.String()).
				Str("treatment_name", tr.Name).
				Msg("treatment has no priced service, skipped")
			continue
		}
		serviceID := svc.ID
		treatmentID := tr.ID
		items = append(items, &BillItem{
			ServiceID:   &serviceID,
			TreatmentID: &treatmentID,
			Description: tr.Name,
			Quantity:    1,
			UnitPrice:   svc.Cost,
			LineTotal:   svc.Cost,
		})
	}

	if len(items) == 0 {
		return nil, apperr.Invalid("no billable items for patient %s", req.PatientID)
	}

	var total float64
	for _, it := range items {
		total += it.LineTotal
	}

	bill := &Bill{
		PatientID:     req.PatientID,
		AdmissionID:   req.AdmissionID,
		BillDate:      req.BillDate,
		DueDate:       req.DueDate,
		TotalAmount:   total,
		PaymentStatus: StatusPending,
		Notes:         req.Notes,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bills.CreateBill(ctx, bill); err != nil {
			return err
		}
		for _, it := range items {
			it.BillID = bill.ID
			if err := s.bills.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("bill_id", bill.ID.String()).
		Str("patient_id", req.PatientID.String()).
		Float64("total", total).
		Int("items", len(items)).
		Msg("bill generated")

	return s.GetBill(ctx, bill.ID)
}

// RecordPayment appends a payment and re-derives the bill's paid
// amount and status from the ledger sum, all in one transaction.
func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID, req *RecordPaymentRequest, recordedBy string) (*PaymentResult, error) {
	if req.PaymentDate.IsZero() {
		return nil, apperr.Invalid("payment_date is required")
	}
	if req.Amount <= 0 {
		return nil, apperr.Invalid("amount must be positive")
	}
	if !validPaymentMethods[req.Method] {
		return nil, apperr.Invalid("invalid payment method: %s", req.Method)
	}

	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperr.NotFound("bill %s not found", billID)
	}
	if bill.Settled() {
		return nil, apperr.Conflict("bill %s is already %s", billID, bill.PaymentStatus)
	}

	balance := bill.TotalAmount - bill.AmountPaid
	if req.Amount > balance {
		if !s.allowOverpayment {
			return nil, apperr.Conflict("payment %.2f exceeds outstanding balance %.2f", req.Amount, balance)
		}
		s.logger.Warn().
			Str("bill_id", billID.String()).
			Float64("amount", req.Amount).
			Float64("balance", balance).
			Msg("overpayment accepted")
	}

	payment := &Payment{
		BillID:      billID,
		PaymentDate: req.PaymentDate,
		Amount:      req.Amount,
		Method:      req.Method,
		Reference:   req.Reference,
		Notes:       req.Notes,
		RecordedBy:  recordedBy,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bills.CreatePayment(ctx, payment); err != nil {
			return err
		}
		totalPaid, err := s.bills.SumPayments(ctx, billID)
		if err != nil {
			return err
		}
		status := StatusPartiallyPaid
		if totalPaid >= bill.TotalAmount {
			status = StatusPaid
		}
		return s.bills.UpdateBillPayment(ctx, billID, totalPaid, status)
	})
	if err != nil {
		return nil, err
	}

	refreshed, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("bill_id", billID.String()).
		Str("payment_id", payment.ID.String()).
		Float64("amount", req.Amount).
		Str("status", refreshed.PaymentStatus).
		Msg("payment recorded")

	return &PaymentResult{Payment: payment, Bill: refreshed}, nil
}

// CancelBill voids an unsettled bill. Paid and already cancelled bills
// cannot be cancelled.
func (s *Service) CancelBill(ctx context.Context, billID uuid.UUID) (*Bill, error) {
	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperr.NotFound("bill %s not found", billID)
	}
	if bill.Settled() {
		return nil, apperr.Conflict("bill %s is already %s", billID, bill.PaymentStatus)
	}
	if err := s.bills.UpdateBillStatus(ctx, billID, StatusCancelled); err != nil {
		return nil, err
	}
	return s.GetBill(ctx, billID)
}

// GetBill returns a bill with its items and payments attached.
func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	bill, err := s.bills.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperr.NotFound("bill %s not found", id)
	}
	if bill.Items, err = s.bills.ListItems(ctx, id); err != nil {
		return nil, err
	}
	if bill.Payments, err = s.bills.ListPayments(ctx, id); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) ListBills(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Bill, int, error) {
	return s.bills.ListBills(ctx, patientID, limit, offset)
}

// ListPayments returns the payment ledger for a bill.
func (s *Service) ListPayments(ctx context.Context, billID uuid.UUID) ([]*Payment, error) {
	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperr.NotFound("bill %s not found", billID)
	}
	return s.bills.ListPayments(ctx, billID)
}
