package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
	"github.com/angelmondragon/homeservices-backend/pkg/db"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/security"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages the staff directory.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*MemberDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*MemberDTO, error)
	List(ctx context.Context) ([]MemberDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*MemberDTO, error)
	Snapshot(ctx context.Context, id uuid.UUID) (*types.StaffSnapshot, error)
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
	Skills   []string
}

// UpdateInput edits profile fields only. Bookings that already hold a
// snapshot of the member are not touched.
type UpdateInput struct {
	Name   *string
	Email  *string
	Phone  *string
	Role   *string
	Skills *[]string
}

type service struct {
	repo   *Repository
	hasher *security.Hasher
	logg   *logger.Logger
}

// NewService constructs the staff directory service.
func NewService(repo *Repository, password config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	return &service{repo: repo, hasher: security.NewHasher(password), logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*MemberDTO, error) {
	member := &models.Staff{
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Phone:  strings.TrimSpace(input.Phone),
		Skills: normalizeSkills(input.Skills),
		Role:   enums.StaffRoleStaff,
	}
	if member.Name == "" || member.Email == "" || member.Phone == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields")
	}
	if strings.TrimSpace(input.Role) != "" {
		role, err := parseRole(input.Role)
		if err != nil {
			return nil, err
		}
		member.Role = role
	}

	taken, err := s.repo.PhoneTaken(ctx, member.Phone, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: check phone")
	}
	if taken {
		return nil, errPhoneTaken()
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	member.PasswordHash = hash

	if _, err := s.repo.Create(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "ux_staff_phone") {
			return nil, errPhoneTaken()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert staff")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithStaffID(ctx, member.ID.String()), "staff registered")
	}
	return NewMemberDTO(member), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MemberDTO, error) {
	member, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewMemberDTO(member), nil
}

func (s *service) List(ctx context.Context) ([]MemberDTO, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list staff")
	}
	out := make([]MemberDTO, 0, len(members))
	for i := range members {
		out = append(out, *NewMemberDTO(&members[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*MemberDTO, error) {
	member, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		member.Name = strings.TrimSpace(*input.Name)
		if member.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
	}
	if input.Email != nil {
		member.Email = strings.TrimSpace(*input.Email)
		if member.Email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
	}
	if input.Role != nil {
		role, err := parseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		member.Role = role
	}
	if input.Skills != nil {
		member.Skills = normalizeSkills(*input.Skills)
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		if phone != member.Phone {
			taken, err := s.repo.PhoneTaken(ctx, phone, &member.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: check phone")
			}
			if taken {
				return nil, errPhoneTaken()
			}
			member.Phone = phone
		}
	}

	if _, err := s.repo.Save(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "ux_staff_phone") {
			return nil, errPhoneTaken()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update staff")
	}
	return NewMemberDTO(member), nil
}

// Snapshot returns the identity copy stored on bookings at assignment time.
func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (*types.StaffSnapshot, error) {
	member, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := SnapshotOf(member)
	return &snapshot, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Staff member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load staff")
	}
	return member, nil
}

func parseRole(raw string) (enums.StaffRole, error) {
	role, err := enums.ParseStaffRole(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").
			WithDetails(map[string]any{"role": raw})
	}
	return role, nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func errPhoneTaken() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "Staff with this phone already exists")
}
