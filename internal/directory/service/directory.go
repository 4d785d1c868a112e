package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	directoryerrors "carematch/internal/directory/errors"
	"carematch/internal/directory/repository"
	"carematch/internal/directory/validator"
	"carematch/pkg/config"
	apperrors "carematch/pkg/errors"
	"carematch/pkg/model"
	"carematch/pkg/sanitizer"
)

// DirectoryService looks up caregivers and members and lets each of them edit their own profile.
// Every write requires the actor to be the profile owner.
type DirectoryService interface {
	GetCaregiver(ctx context.Context, id string) (*model.Caregiver, error)
	GetMember(ctx context.Context, id string) (*model.Member, error)
	CaregiverExists(ctx context.Context, id string) (bool, error)
	MemberExists(ctx context.Context, id string) (bool, error)
	SearchCaregivers(ctx context.Context, filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, int64, error)

	UpdateCaregiver(ctx context.Context, id, actorID string, update *model.CaregiverUpdate) (*model.Caregiver, error)
	UpdateMember(ctx context.Context, id, actorID string, update *model.MemberUpdate) (*model.Member, error)
	GetPrimaryAddress(ctx context.Context, memberID, actorID string) (*model.Address, error)
	UpsertPrimaryAddress(ctx context.Context, memberID, actorID string, address *model.Address) (*model.Address, error)
	DeletePrimaryAddress(ctx context.Context, memberID, actorID string) error
}

type directoryService struct {
	repo      repository.DirectoryRepository
	validator *validator.DirectoryValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewDirectoryService(repo repository.DirectoryRepository, validator *validator.DirectoryValidator, cfg *config.Config) DirectoryService {
	return &directoryService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *directoryService) GetCaregiver(ctx context.Context, id string) (*model.Caregiver, error) {
	id = sanitizer.SanitizeID(id)
	caregiver, err := s.repo.FindCaregiverByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "Caregiver", id)
	}
	return caregiver, nil
}

func (s *directoryService) GetMember(ctx context.Context, id string) (*model.Member, error) {
	id = sanitizer.SanitizeID(id)
	member, err := s.repo.FindMemberByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "Member", id)
	}
	// the address is only served to its owner
	member.PrimaryAddress = nil
	return member, nil
}

func (s *directoryService) CaregiverExists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetCaregiver(ctx, id)
	return exists(err)
}

func (s *directoryService) MemberExists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetMember(ctx, id)
	return exists(err)
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case apperrors.HasCode(err, apperrors.CodeNotFound), apperrors.HasCode(err, apperrors.CodeInvalidInput):
		return false, nil
	}
	return false, err
}

func (s *directoryService) SearchCaregivers(ctx context.Context, filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, int64, error) {
	s.sanitize(&filter)
	if err := s.validator.ValidateFilter(&filter); err != nil {
		s.cfg.Log.Warn("Caregiver search validation failed", "error", err)
		return nil, 0, apperrors.InvalidInput(err.Error())
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var caregivers []*model.Caregiver
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountCaregivers(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count caregivers", "error", err)
			errCount = apperrors.Internal("Failed to count caregivers", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		caregivers, err = s.repo.SearchCaregivers(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search caregivers", "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to search caregivers", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Caregiver search completed",
		"caregiving_type", filter.CaregivingType,
		"city", filter.City,
		"sort_by", filter.SortBy,
		"count", len(caregivers),
		"total_count", count,
	)
	return caregivers, count, nil
}

func (s *directoryService) UpdateCaregiver(ctx context.Context, id, actorID string, update *model.CaregiverUpdate) (*model.Caregiver, error) {
	id = sanitizer.SanitizeID(id)
	if err := authorizeOwner(id, actorID, "caregiver"); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindCaregiverByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "Caregiver", id)
	}

	sanitizeCaregiverUpdate(update)
	merged := mergeCaregiver(existing, update)
	merged.UpdatedAt = s.now().UTC()

	if err := s.validator.ValidateCaregiver(merged); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Caregiver profile validation failed", "caregiver_id", id, "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	updated, err := s.repo.UpdateCaregiver(ctx, merged)
	if err != nil {
		return nil, s.translate(ctx, err, "Caregiver", id)
	}

	s.cfg.Log.WithContext(ctx).Info("Caregiver profile updated", "caregiver_id", id)
	return updated, nil
}

func (s *directoryService) UpdateMember(ctx context.Context, id, actorID string, update *model.MemberUpdate) (*model.Member, error) {
	id = sanitizer.SanitizeID(id)
	if err := authorizeOwner(id, actorID, "member"); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindMemberByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, "Member", id)
	}

	sanitizeMemberUpdate(update)
	merged := mergeMember(existing, update)
	merged.UpdatedAt = s.now().UTC()

	if err := s.validator.ValidateMember(merged); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Member profile validation failed", "member_id", id, "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	updated, err := s.repo.UpdateMember(ctx, merged)
	if err != nil {
		return nil, s.translate(ctx, err, "Member", id)
	}

	s.cfg.Log.WithContext(ctx).Info("Member profile updated", "member_id", id)
	return updated, nil
}

func (s *directoryService) GetPrimaryAddress(ctx context.Context, memberID, actorID string) (*model.Address, error) {
	memberID = sanitizer.SanitizeID(memberID)
	if err := authorizeOwner(memberID, actorID, "member"); err != nil {
		return nil, err
	}

	member, err := s.repo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, s.translate(ctx, err, "Member", memberID)
	}
	if member.PrimaryAddress == nil {
		return nil, apperrors.NotFound("Primary address")
	}
	return member.PrimaryAddress, nil
}

func (s *directoryService) UpsertPrimaryAddress(ctx context.Context, memberID, actorID string, address *model.Address) (*model.Address, error) {
	memberID = sanitizer.SanitizeID(memberID)
	if err := authorizeOwner(memberID, actorID, "member"); err != nil {
		return nil, err
	}

	address.HouseNumber = sanitizer.TrimAndNormalize(address.HouseNumber)
	address.Street = sanitizer.NormalizeName(address.Street)
	address.Town = sanitizer.NormalizeCity(address.Town)
	address.UpdatedAt = s.now().UTC()

	if err := s.validator.ValidateAddress(address); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Primary address validation failed", "member_id", memberID, "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	member, err := s.repo.SetPrimaryAddress(ctx, memberID, address)
	if err != nil {
		return nil, s.translate(ctx, err, "Member", memberID)
	}

	s.cfg.Log.WithContext(ctx).Info("Primary address saved", "member_id", memberID)
	return member.PrimaryAddress, nil
}

// DeletePrimaryAddress succeeds whether or not an address was set.
func (s *directoryService) DeletePrimaryAddress(ctx context.Context, memberID, actorID string) error {
	memberID = sanitizer.SanitizeID(memberID)
	if err := authorizeOwner(memberID, actorID, "member"); err != nil {
		return err
	}

	if err := s.repo.ClearPrimaryAddress(ctx, memberID); err != nil {
		return s.translate(ctx, err, "Member", memberID)
	}

	s.cfg.Log.WithContext(ctx).Info("Primary address removed", "member_id", memberID)
	return nil
}

func authorizeOwner(id, actorID, role string) error {
	actorID = sanitizer.SanitizeID(actorID)
	if actorID == "" {
		return apperrors.Unauthorized("actor identity is required")
	}
	if actorID != id {
		return apperrors.Forbidden("only the " + role + " can change this profile")
	}
	return nil
}

func sanitizeCaregiverUpdate(u *model.CaregiverUpdate) {
	normalize(&u.GivenName, sanitizer.NormalizeName)
	normalize(&u.Surname, sanitizer.NormalizeName)
	normalize(&u.City, sanitizer.NormalizeCity)
	normalize(&u.PhoneNumber, sanitizer.TrimAndNormalize)
	normalize(&u.ProfileDescription, sanitizer.NormalizeText)
	normalize(&u.CaregivingType, sanitizer.SanitizeEnum)
	normalize(&u.Gender, func(g string) string { return canonicalGender(sanitizer.TrimAndNormalize(g)) })
}

func sanitizeMemberUpdate(u *model.MemberUpdate) {
	normalize(&u.City, sanitizer.NormalizeCity)
	normalize(&u.PhoneNumber, sanitizer.TrimAndNormalize)
	normalize(&u.ProfileDescription, sanitizer.NormalizeText)
	normalize(&u.HouseRules, sanitizer.NormalizeText)
	normalize(&u.DependentDescription, sanitizer.NormalizeText)
}

func normalize(field **string, fn sanitizer.Strategy) {
	if *field == nil {
		return
	}
	v := fn(**field)
	*field = &v
}

func mergeCaregiver(existing *model.Caregiver, u *model.CaregiverUpdate) *model.Caregiver {
	merged := *existing
	if u.GivenName != nil {
		merged.GivenName = *u.GivenName
	}
	if u.Surname != nil {
		merged.Surname = *u.Surname
	}
	if u.City != nil {
		merged.City = *u.City
	}
	if u.PhoneNumber != nil {
		merged.PhoneNumber = *u.PhoneNumber
	}
	if u.ProfileDescription != nil {
		merged.ProfileDescription = *u.ProfileDescription
	}
	if u.Gender != nil {
		merged.Gender = *u.Gender
	}
	if u.CaregivingType != nil {
		merged.CaregivingType = *u.CaregivingType
	}
	if u.HourlyRate != nil {
		merged.HourlyRate = *u.HourlyRate
	}
	return &merged
}

func mergeMember(existing *model.Member, u *model.MemberUpdate) *model.Member {
	merged := *existing
	if u.City != nil {
		merged.City = *u.City
	}
	if u.PhoneNumber != nil {
		merged.PhoneNumber = *u.PhoneNumber
	}
	if u.ProfileDescription != nil {
		merged.ProfileDescription = *u.ProfileDescription
	}
	if u.HouseRules != nil {
		merged.HouseRules = *u.HouseRules
	}
	if u.DependentDescription != nil {
		merged.DependentDescription = *u.DependentDescription
	}
	return &merged
}

func (s *directoryService) sanitize(f *model.CaregiverFilter) {
	f.CaregivingType = sanitizer.SanitizeEnum(f.CaregivingType)
	f.City = sanitizer.NormalizeCity(f.City)
	f.Gender = canonicalGender(sanitizer.TrimAndNormalize(f.Gender))
	f.SortBy = sanitizer.SanitizeEnum(f.SortBy)
}

// canonicalGender matches case-insensitively against the known values and keeps unknown input as-is.
func canonicalGender(g string) string {
	for _, known := range model.Genders {
		if strings.EqualFold(known, g) {
			return known
		}
	}
	return g
}

func (s *directoryService) translate(ctx context.Context, err error, resource, id string) error {
	switch {
	case errors.Is(err, directoryerrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, directoryerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + strings.ToLower(resource) + " ID format")
	}
	s.cfg.Log.WithContext(ctx).Error("Directory lookup failed", "resource", resource, "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve "+strings.ToLower(resource), err)
}
