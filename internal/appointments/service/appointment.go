package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	appointmentserrors "carematch/internal/appointments/errors"
	"carematch/internal/appointments/repository"
	"carematch/internal/appointments/validator"
	"carematch/pkg/config"
	apperrors "carematch/pkg/errors"
	"carematch/pkg/logger"
	"carematch/pkg/model"
	"carematch/pkg/sanitizer"

	"github.com/shopspring/decimal"
)

type AppointmentService interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, id string, actorID string, updates *model.AppointmentUpdate) (*model.Appointment, error)
	Cancel(ctx context.Context, id string, actorID string) (*model.Appointment, error)
	Confirm(ctx context.Context, id string, actorID string) (*model.Appointment, error)
	Decline(ctx context.Context, id string, actorID string) (*model.Appointment, error)
	Complete(ctx context.Context, id string, actorID string) (*model.Appointment, error)
	ListByMember(ctx context.Context, memberID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
	ListByCaregiver(ctx context.Context, caregiverID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
}

// DirectoryLookup resolves the parties of an appointment. Implementations return AppErrors.
type DirectoryLookup interface {
	GetCaregiver(ctx context.Context, id string) (*model.Caregiver, error)
	GetMember(ctx context.Context, id string) (*model.Member, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.AppointmentEvent) error
}

type Option func(*appointmentService)

// WithClock replaces the wall clock used for past-date checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *appointmentService) {
		s.now = now
	}
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	directory DirectoryLookup
	publisher EventPublisher
	validator *validator.AppointmentValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	directory DirectoryLookup,
	publisher EventPublisher,
	validator *validator.AppointmentValidator,
	cfg *config.Config,
	opts ...Option,
) AppointmentService {
	s := &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		directory: directory,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// transition describes one status change: who may perform it and from which statuses.
type transition struct {
	verb      string
	from      []string
	to        string
	event     string
	authorize func(appt *model.Appointment, actorID string) bool
}

func isParty(appt *model.Appointment, actorID string) bool {
	return appt.HasParty(actorID)
}

func isCaregiver(appt *model.Appointment, actorID string) bool {
	return actorID == appt.CaregiverID
}

var (
	cancelTransition = transition{
		verb:      "cancel",
		from:      []string{model.StatusPending, model.StatusConfirmed},
		to:        model.StatusCancelled,
		event:     model.EventAppointmentCancelled,
		authorize: isParty,
	}
	confirmTransition = transition{
		verb:      "confirm",
		from:      []string{model.StatusPending},
		to:        model.StatusConfirmed,
		event:     model.EventAppointmentConfirmed,
		authorize: isCaregiver,
	}
	declineTransition = transition{
		verb:      "decline",
		from:      []string{model.StatusPending},
		to:        model.StatusDeclined,
		event:     model.EventAppointmentDeclined,
		authorize: isCaregiver,
	}
	completeTransition = transition{
		verb:      "complete",
		from:      []string{model.StatusConfirmed},
		to:        model.StatusCompleted,
		event:     model.EventAppointmentCompleted,
		authorize: isParty,
	}
)

func (s *appointmentService) Create(ctx context.Context, appt *model.Appointment) error {
	appt.Status = model.StatusPending
	s.sanitize(appt)
	if err := s.validate(appt); err != nil {
		return err
	}

	caregiver, err := s.lookupCaregiver(ctx, appt.CaregiverID)
	if err != nil {
		return err
	}
	if _, err := s.lookupMember(ctx, appt.MemberID); err != nil {
		return err
	}

	appt.TotalCost = totalCost(appt.WorkHours, caregiver.HourlyRate)
	now := s.timestamp()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	lockID, err := s.acquireSlotLock(ctx, appt.SlotKey())
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifyAvailability(txCtx, appt.CaregiverID, appt.Date, appt.Time, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, appt); err != nil {
			if errors.Is(err, appointmentserrors.ErrSlotTaken) {
				return slotConflict(appt.Date, appt.Time)
			}
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	// the partial unique index guards the slot once the transaction has committed
	s.releaseSlotLock(ctx, lockID)
	if err != nil {
		return s.failWrite(ctx, "Failed to create appointment", err, "caregiver_id", appt.CaregiverID, "date", appt.Date, "time", appt.Time)
	}

	s.log(ctx).Info("Appointment created successfully",
		"id", appt.ID,
		"caregiver_id", appt.CaregiverID,
		"member_id", appt.MemberID,
		"date", appt.Date,
		"time", appt.Time,
	)
	s.publish(ctx, model.EventAppointmentCreated, appt.MemberID, appt)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.log(ctx).Error("Failed to retrieve appointment", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}

	return appt, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, actorID string, updates *model.AppointmentUpdate) (*model.Appointment, error) {
	actorID = sanitizer.SanitizeID(actorID)
	if actorID == "" {
		return nil, apperrors.Unauthorized("member_id is required to update an appointment")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorID != existing.MemberID {
		s.log(ctx).Warn("Appointment update rejected", "id", existing.ID, "actor_id", actorID)
		return nil, apperrors.Forbidden("Only the member who booked the appointment can update it")
	}
	if existing.IsTerminal() {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("Appointment cannot be updated while %s", existing.Status), existing.Status)
	}

	if updates.IsEmpty() {
		return existing, nil
	}

	s.sanitizeUpdate(updates)
	if err := s.validateUpdate(updates); err != nil {
		return nil, err
	}

	merged, rescheduled, hoursChanged := mergeAppointmentUpdates(existing, updates)
	if !rescheduled && !hoursChanged {
		return existing, nil
	}
	if rescheduled {
		if err := s.validator.ValidateNotPast(merged.Date, s.now().UTC()); err != nil {
			s.log(ctx).Warn("Appointment reschedule rejected", "id", existing.ID, "date", merged.Date, "error", err)
			return nil, invalidInput("Appointment date cannot be in the past", err)
		}
	}

	if hoursChanged {
		caregiver, err := s.lookupCaregiver(ctx, merged.CaregiverID)
		if err != nil {
			return nil, err
		}
		merged.TotalCost = totalCost(merged.WorkHours, caregiver.HourlyRate)
	}
	if rescheduled {
		merged.Status = model.StatusPending
	}
	merged.UpdatedAt = s.timestamp()

	var updated *model.Appointment
	write := func(txCtx context.Context) error {
		if rescheduled {
			if err := s.verifyAvailability(txCtx, merged.CaregiverID, merged.Date, merged.Time, merged.ID); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.repo.Update(txCtx, merged, existing.Status)
		if err != nil {
			switch {
			case errors.Is(err, appointmentserrors.ErrSlotTaken):
				return slotConflict(merged.Date, merged.Time)
			case errors.Is(err, appointmentserrors.ErrStatusChanged):
				return s.lostRace(txCtx, existing.ID, "updated")
			}
			return apperrors.Internal("Failed to update appointment", err)
		}
		return nil
	}

	if rescheduled {
		var lockID string
		lockID, err = s.acquireSlotLock(ctx, merged.SlotKey())
		if err != nil {
			return nil, err
		}
		err = s.repo.ExecuteTransaction(ctx, write)
		s.releaseSlotLock(ctx, lockID)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return nil, s.failWrite(ctx, "Failed to update appointment", err, "id", existing.ID)
	}

	s.log(ctx).Info("Appointment updated successfully",
		"id", updated.ID,
		"rescheduled", rescheduled,
		"status", updated.Status,
	)
	s.publish(ctx, model.EventAppointmentUpdated, actorID, updated)
	return updated, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id string, actorID string) (*model.Appointment, error) {
	return s.transition(ctx, id, actorID, cancelTransition)
}

func (s *appointmentService) Confirm(ctx context.Context, id string, actorID string) (*model.Appointment, error) {
	return s.transition(ctx, id, actorID, confirmTransition)
}

func (s *appointmentService) Decline(ctx context.Context, id string, actorID string) (*model.Appointment, error) {
	return s.transition(ctx, id, actorID, declineTransition)
}

func (s *appointmentService) Complete(ctx context.Context, id string, actorID string) (*model.Appointment, error) {
	return s.transition(ctx, id, actorID, completeTransition)
}

func (s *appointmentService) transition(ctx context.Context, id string, actorID string, t transition) (*model.Appointment, error) {
	actorID = sanitizer.SanitizeID(actorID)
	if actorID == "" {
		return nil, apperrors.Unauthorized(fmt.Sprintf("An acting user is required to %s an appointment", t.verb))
	}

	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.authorize(appt, actorID) {
		s.log(ctx).Warn("Appointment transition rejected", "id", appt.ID, "action", t.verb, "actor_id", actorID)
		return nil, apperrors.Forbidden(fmt.Sprintf("User is not allowed to %s this appointment", t.verb))
	}
	if !slices.Contains(t.from, appt.Status) {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("Appointment cannot be %s while %s", t.to, appt.Status), appt.Status)
	}

	updated, err := s.repo.TransitionStatus(ctx, appt.ID, appt.Status, t.to, s.timestamp())
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrStatusChanged) {
			return nil, s.lostRace(ctx, appt.ID, t.to)
		}
		s.log(ctx).Error("Failed to change appointment status", "id", appt.ID, "to", t.to, "error", err)
		return nil, apperrors.Internal("Failed to change appointment status", err)
	}

	s.log(ctx).Info(fmt.Sprintf("Appointment %s successfully", t.to),
		"id", updated.ID,
		"from", appt.Status,
		"actor_id", actorID,
	)
	s.publish(ctx, t.event, actorID, updated)
	return updated, nil
}

func (s *appointmentService) ListByMember(ctx context.Context, memberID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	memberID = sanitizer.SanitizeID(memberID)
	if err := s.prepareFilter(&filter); err != nil {
		return nil, 0, err
	}
	if _, err := s.lookupMember(ctx, memberID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repository.FieldMemberID, memberID, filter, limit, offset)
}

func (s *appointmentService) ListByCaregiver(ctx context.Context, caregiverID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	caregiverID = sanitizer.SanitizeID(caregiverID)
	if err := s.prepareFilter(&filter); err != nil {
		return nil, 0, err
	}
	if _, err := s.lookupCaregiver(ctx, caregiverID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repository.FieldCaregiverID, caregiverID, filter, limit, offset)
}

func (s *appointmentService) list(ctx context.Context, field, partyID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByParty(ctx, field, partyID, filter)
		if err != nil {
			s.log(ctx).Error("Failed to count appointments", field, partyID, "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appointments, err = s.repo.FindByParty(ctx, field, partyID, filter, limit, offset)
		if err != nil {
			s.log(ctx).Error("Failed to list appointments",
				field, partyID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve appointments", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.log(ctx).Debug("Appointment listing completed",
		field, partyID,
		"status", filter.Status,
		"count", len(appointments),
		"total_count", count,
	)
	return appointments, count, nil
}

// --- Helpers ---

func (s *appointmentService) log(ctx context.Context) *logger.Logger {
	return s.cfg.Log.WithContext(ctx)
}

func (s *appointmentService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.CaregiverID = sanitizer.SanitizeID(a.CaregiverID)
	a.MemberID = sanitizer.SanitizeID(a.MemberID)
	a.Date = sanitizer.SanitizeDate(a.Date)
	a.Time = sanitizer.SanitizeClock(a.Time)
}

func (s *appointmentService) sanitizeUpdate(u *model.AppointmentUpdate) {
	if u.Date != nil {
		date := sanitizer.SanitizeDate(*u.Date)
		u.Date = &date
	}
	if u.Time != nil {
		clock := sanitizer.SanitizeClock(*u.Time)
		u.Time = &clock
	}
}

func (s *appointmentService) prepareFilter(f *model.AppointmentFilter) error {
	f.Status = sanitizer.SanitizeEnum(f.Status)
	f.From = sanitizer.SanitizeDate(f.From)
	f.To = sanitizer.SanitizeDate(f.To)

	if err := s.validator.ValidateFilter(f); err != nil {
		return invalidInput("Invalid appointment filter", err)
	}
	return nil
}

func (s *appointmentService) validate(appt *model.Appointment) error {
	if err := s.validator.Validate(appt); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return invalidInput("Appointment validation failed", err)
	}
	if err := s.validator.ValidateNotPast(appt.Date, s.now().UTC()); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return invalidInput("Appointment date cannot be in the past", err)
	}
	return nil
}

func (s *appointmentService) validateUpdate(u *model.AppointmentUpdate) error {
	if err := s.validator.ValidateUpdate(u); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "error", err)
		return invalidInput("Appointment update validation failed", err)
	}
	return nil
}

func invalidInput(message string, err error) error {
	appErr := apperrors.InvalidInput(message)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return appErr.WithDetails(map[string]any{"errors": verrs})
	}
	return appErr.WithDetails(map[string]any{"error": err.Error()})
}

// mergeAppointmentUpdates applies the non-nil fields and reports what actually changed.
func mergeAppointmentUpdates(existing *model.Appointment, updates *model.AppointmentUpdate) (merged *model.Appointment, rescheduled, hoursChanged bool) {
	m := *existing

	if updates.Date != nil && *updates.Date != m.Date {
		m.Date = *updates.Date
		rescheduled = true
	}
	if updates.Time != nil && *updates.Time != m.Time {
		m.Time = *updates.Time
		rescheduled = true
	}
	if updates.WorkHours != nil && *updates.WorkHours != m.WorkHours {
		m.WorkHours = *updates.WorkHours
		hoursChanged = true
	}

	return &m, rescheduled, hoursChanged
}

// totalCost returns nil when the caregiver has no usable hourly rate.
func totalCost(workHours float64, hourlyRate decimal.Decimal) *decimal.Decimal {
	if !hourlyRate.IsPositive() {
		return nil
	}
	cost := decimal.NewFromFloat(workHours).Mul(hourlyRate).Round(2)
	return &cost
}

func (s *appointmentService) lookupCaregiver(ctx context.Context, id string) (*model.Caregiver, error) {
	caregiver, err := s.directory.GetCaregiver(ctx, id)
	if err != nil {
		return nil, passThrough(err, "Failed to look up caregiver")
	}
	return caregiver, nil
}

func (s *appointmentService) lookupMember(ctx context.Context, id string) (*model.Member, error) {
	member, err := s.directory.GetMember(ctx, id)
	if err != nil {
		return nil, passThrough(err, "Failed to look up member")
	}
	return member, nil
}

func passThrough(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}

func (s *appointmentService) verifyAvailability(ctx context.Context, caregiverID, date, clock, excludeID string) error {
	existing, err := s.repo.FindActiveAtSlot(ctx, caregiverID, date, clock, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check caregiver availability", err)
	}
	if existing != nil {
		return slotConflict(date, clock)
	}
	return nil
}

func slotConflict(date, clock string) error {
	return apperrors.Conflict(fmt.Sprintf("Caregiver already has an appointment on %s at %s", date, clock))
}

// lostRace reports the status that won a concurrent conditional update.
func (s *appointmentService) lostRace(ctx context.Context, id string, attempted string) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to reload appointment", err)
	}
	s.log(ctx).Warn("Appointment changed concurrently", "id", id, "status", current.Status)
	return apperrors.InvalidState(
		fmt.Sprintf("Appointment cannot be %s while %s", attempted, current.Status), current.Status)
}

func (s *appointmentService) failWrite(ctx context.Context, message string, err error, args ...any) error {
	args = append(args, "error", err)
	appErr := apperrors.AsAppError(err)
	if appErr.Code == apperrors.CodeInternal {
		s.log(ctx).Error(message, args...)
		return apperrors.Internal(message, err)
	}
	s.log(ctx).Warn(message, args...)
	return appErr
}

// acquireSlotLock claims an advisory lock on the slot so concurrent writers fail fast with a conflict.
func (s *appointmentService) acquireSlotLock(ctx context.Context, slotKey string) (string, error) {
	now := s.timestamp()
	lock := &model.SlotLock{
		ID:        slotKey,
		ExpiresAt: now.Add(s.cfg.SlotLockTTL),
		CreatedAt: now,
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotTaken) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		s.log(ctx).Error("Failed to acquire slot lock", "slot", slotKey, "error", err)
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lock.ID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(context.WithoutCancel(ctx), lockID); err != nil {
		s.log(ctx).Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
	}
}

// publish emits a lifecycle event after commit. Failures are logged only.
func (s *appointmentService) publish(ctx context.Context, eventType, actorID string, appt *model.Appointment) {
	if s.publisher == nil {
		return
	}

	event := model.AppointmentEvent{
		Type:        eventType,
		ActorID:     actorID,
		Appointment: *appt,
		OccurredAt:  s.timestamp(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log(ctx).Error("Failed to publish appointment event", "type", eventType, "id", appt.ID, "error", err)
	}
}
