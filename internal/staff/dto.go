package staff

import (
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
)

// MemberDTO is the public view of a staff member. The password hash never
// leaves the service.
type MemberDTO struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewMemberDTO(member *models.Staff) *MemberDTO {
	return &MemberDTO{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Phone:     member.Phone,
		Role:      string(member.Role),
		Skills:    append([]string{}, member.Skills...),
		CreatedAt: member.CreatedAt,
		UpdatedAt: member.UpdatedAt,
	}
}

// SnapshotOf copies the identity fields stored on a booking at assignment time.
func SnapshotOf(member *models.Staff) types.StaffSnapshot {
	return types.StaffSnapshot{
		ID:    member.ID.String(),
		Name:  member.Name,
		Email: member.Email,
		Phone: member.Phone,
	}
}
