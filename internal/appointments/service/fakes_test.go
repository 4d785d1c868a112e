package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appointmentserrors "carematch/internal/appointments/errors"
	"carematch/internal/appointments/repository"
	mongotx "carematch/pkg/db/mongo"
	apperrors "carematch/pkg/errors"
	"carematch/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory appointment repository ---

type memoryAppointmentRepository struct {
	mu    sync.Mutex
	items map[string]model.Appointment

	// hooks let tests inject failures or interleavings
	beforeTransition func(id string)
	createErr        error
	findErr          error
}

var _ repository.AppointmentRepository = (*memoryAppointmentRepository)(nil)

func newMemoryAppointmentRepository() *memoryAppointmentRepository {
	return &memoryAppointmentRepository{items: map[string]model.Appointment{}}
}

func (r *memoryAppointmentRepository) slotTakenLocked(a *model.Appointment, excludeID string) bool {
	for id, other := range r.items {
		if id == excludeID || !other.Active {
			continue
		}
		if other.CaregiverID == a.CaregiverID && other.Date == a.Date && other.Time == a.Time {
			return true
		}
	}
	return false
}

func (r *memoryAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	appt.Active = !appt.IsTerminal()
	if appt.Active && r.slotTakenLocked(appt, "") {
		return appointmentserrors.ErrSlotTaken
	}
	appt.ID = primitive.NewObjectID().Hex()
	r.items[appt.ID] = *appt
	return nil
}

func (r *memoryAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, appointmentserrors.ErrInvalidID
	}
	appt, ok := r.items[id]
	if !ok {
		return nil, appointmentserrors.ErrNotFound
	}
	return &appt, nil
}

func (r *memoryAppointmentRepository) FindActiveAtSlot(ctx context.Context, caregiverID, date, clock, excludeID string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, other := range r.items {
		if id == excludeID || !other.Active {
			continue
		}
		if other.CaregiverID == caregiverID && other.Date == date && other.Time == clock {
			found := other
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryAppointmentRepository) Update(ctx context.Context, appt *model.Appointment, expectedStatus string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[appt.ID]
	if !ok || stored.Status != expectedStatus {
		return nil, appointmentserrors.ErrStatusChanged
	}
	next := *appt
	next.Active = !next.IsTerminal()
	if next.Active && r.slotTakenLocked(&next, next.ID) {
		return nil, appointmentserrors.ErrSlotTaken
	}
	r.items[next.ID] = next
	return &next, nil
}

func (r *memoryAppointmentRepository) TransitionStatus(ctx context.Context, id, from, to string, at time.Time) (*model.Appointment, error) {
	if r.beforeTransition != nil {
		r.beforeTransition(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[id]
	if !ok || stored.Status != from {
		return nil, appointmentserrors.ErrStatusChanged
	}
	stored.Status = to
	stored.Active = !model.IsTerminalStatus(to)
	stored.UpdatedAt = at
	r.items[id] = stored
	return &stored, nil
}

func (r *memoryAppointmentRepository) matching(field, partyID string, filter model.AppointmentFilter) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range r.items {
		owner := a.MemberID
		if field == repository.FieldCaregiverID {
			owner = a.CaregiverID
		}
		if owner != partyID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.From != "" && a.Date < filter.From {
			continue
		}
		if filter.To != "" && a.Date > filter.To {
			continue
		}
		appt := a
		out = append(out, &appt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out
}

func (r *memoryAppointmentRepository) FindByParty(ctx context.Context, field, partyID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	all := r.matching(field, partyID, filter)
	if int(offset) >= len(all) {
		return []*model.Appointment{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryAppointmentRepository) CountByParty(ctx context.Context, field, partyID string, filter model.AppointmentFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(field, partyID, filter))), nil
}

func (r *memoryAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func (r *memoryAppointmentRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// --- Slot locks ---

type memorySlotLockRepository struct {
	mu    sync.Mutex
	locks map[string]model.SlotLock
}

func newMemorySlotLockRepository() *memorySlotLockRepository {
	return &memorySlotLockRepository{locks: map[string]model.SlotLock{}}
}

func (r *memorySlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, held := r.locks[lock.ID]; held {
		return appointmentserrors.ErrSlotTaken
	}
	r.locks[lock.ID] = *lock
	return nil
}

func (r *memorySlotLockRepository) Delete(ctx context.Context, lockID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, lockID)
	return nil
}

func (r *memorySlotLockRepository) held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// --- Directory and events ---

type fakeDirectory struct {
	caregivers map[string]*model.Caregiver
	members    map[string]*model.Member
	err        error
}

func (d *fakeDirectory) GetCaregiver(ctx context.Context, id string) (*model.Caregiver, error) {
	if d.err != nil {
		return nil, d.err
	}
	if c, ok := d.caregivers[id]; ok {
		return c, nil
	}
	return nil, apperrors.NotFoundWithID("Caregiver", id)
}

func (d *fakeDirectory) GetMember(ctx context.Context, id string) (*model.Member, error) {
	if d.err != nil {
		return nil, d.err
	}
	if m, ok := d.members[id]; ok {
		return m, nil
	}
	return nil, apperrors.NotFoundWithID("Member", id)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.AppointmentEvent
	err    error
	// onPublish runs before the event is recorded.
	onPublish func(event model.AppointmentEvent)
}

func (p *recordingPublisher) Publish(ctx context.Context, event model.AppointmentEvent) error {
	if p.onPublish != nil {
		p.onPublish(event)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errStore = errors.New("server selection timeout")
