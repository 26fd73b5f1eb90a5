package population

import (
	"regexp"
	"strings"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

// Sex of a resident
type Sex string

const (
	SexMale   Sex = "LAKI_LAKI"
	SexFemale Sex = "PEREMPUAN"
)

// IsValid reports whether s is a known value
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// Relationship is the resident's role within the household card
type Relationship string

const (
	RelationshipHead        Relationship = "KEPALA_KELUARGA"
	RelationshipSpouse      Relationship = "PASANGAN"
	RelationshipChild       Relationship = "ANAK"
	RelationshipChildInLaw  Relationship = "MENANTU"
	RelationshipGrandchild  Relationship = "CUCU"
	RelationshipParent      Relationship = "ORANG_TUA"
	RelationshipParentInLaw Relationship = "MERTUA"
	RelationshipRelative    Relationship = "FAMILI_LAIN"
	RelationshipOther       Relationship = "LAINNYA"
)

// IsValid reports whether r is a known value
func (r Relationship) IsValid() bool {
	switch r {
	case RelationshipHead, RelationshipSpouse, RelationshipChild, RelationshipChildInLaw,
		RelationshipGrandchild, RelationshipParent, RelationshipParentInLaw,
		RelationshipRelative, RelationshipOther:
		return true
	}
	return false
}

var nikPattern = regexp.MustCompile(`^\d{16}$`)

// ValidateNIK checks the national identity number is exactly 16 digits
func ValidateNIK(nik string) error {
	if !nikPattern.MatchString(nik) {
		return ErrInvalidNIK
	}
	return nil
}

// Resident is a person registered on exactly one family card
type Resident struct {
	shared.BaseEntity
	shared.SoftDeletable
	NIK          string
	Name         string
	BirthDate    time.Time
	Sex          Sex
	Occupation   string
	Relationship Relationship
	Status       Status
	FamilyCardID uuid.UUID
}

// NewResidentParams carries the fields needed to register a resident
type NewResidentParams struct {
	NIK          string
	Name         string
	BirthDate    time.Time
	Sex          Sex
	Occupation   string
	Relationship Relationship
	FamilyCardID uuid.UUID
}

// NewResident validates params and returns an active resident
func NewResident(p NewResidentParams) (*Resident, error) {
	if err := ValidateNIK(p.NIK); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidFormat, "Name is required")
	}
	if !p.Sex.IsValid() {
		return nil, ErrInvalidSex
	}
	if !p.Relationship.IsValid() {
		return nil, ErrInvalidRelationship
	}
	if p.FamilyCardID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidFormat, "Family card is required")
	}

	return &Resident{
		BaseEntity:   shared.NewBaseEntity(),
		NIK:          p.NIK,
		Name:         strings.TrimSpace(p.Name),
		BirthDate:    p.BirthDate,
		Sex:          p.Sex,
		Occupation:   p.Occupation,
		Relationship: p.Relationship,
		Status:       StatusActive,
		FamilyCardID: p.FamilyCardID,
	}, nil
}

// IsHead reports whether the resident holds the head-of-household role
func (r *Resident) IsHead() bool {
	return r.Relationship == RelationshipHead
}

// IsActiveHead reports whether the resident counts toward the single-head limit
func (r *Resident) IsActiveHead() bool {
	return r.IsHead() && r.Status == StatusActive && r.IsActive()
}

// IsTerminal reports whether the record is frozen
func (r *Resident) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// EnsureMutable fails when the resident has reached the terminal status
func (r *Resident) EnsureMutable() error {
	if r.IsTerminal() {
		return ErrRecordFrozen
	}
	return nil
}

// Change is a partial update; nil fields keep their current value
type Change struct {
	NIK          *string
	Name         *string
	BirthDate    *time.Time
	Sex          *Sex
	Occupation   *string
	Status       *Status
	Relationship *Relationship
	FamilyCardID *uuid.UUID
}

// ChangesNIK reports whether c assigns a NIK different from current
func (c Change) ChangesNIK(current string) bool {
	return c.NIK != nil && *c.NIK != current
}

// Validate checks the enum and format fields carried by c
func (c Change) Validate() error {
	if c.NIK != nil {
		if err := ValidateNIK(*c.NIK); err != nil {
			return err
		}
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return shared.NewDomainError(shared.CodeInvalidFormat, "Name cannot be empty")
	}
	if c.Sex != nil && !c.Sex.IsValid() {
		return ErrInvalidSex
	}
	if c.Relationship != nil && !c.Relationship.IsValid() {
		return ErrInvalidRelationship
	}
	if c.Status != nil && !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	if c.FamilyCardID != nil && *c.FamilyCardID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidFormat, "Family card cannot be empty")
	}
	return nil
}

// TouchesHousehold reports whether c sets a field the single-head rule
// depends on.
func (c Change) TouchesHousehold() bool {
	return c.Status != nil || c.Relationship != nil || c.FamilyCardID != nil
}

// Admits checks that c may be applied to the resident as it stands: the
// record is not frozen and any status change is a legal transition.
func (r *Resident) Admits(c Change) error {
	if err := r.EnsureMutable(); err != nil {
		return err
	}
	if c.Status != nil {
		return ValidateTransition(r.Status, *c.Status)
	}
	return nil
}

// Apply writes the fields present in c onto the resident
func (r *Resident) Apply(c Change) {
	if c.NIK != nil {
		r.NIK = *c.NIK
	}
	if c.Name != nil {
		r.Name = strings.TrimSpace(*c.Name)
	}
	if c.BirthDate != nil {
		r.BirthDate = *c.BirthDate
	}
	if c.Sex != nil {
		r.Sex = *c.Sex
	}
	if c.Occupation != nil {
		r.Occupation = *c.Occupation
	}
	if c.Status != nil {
		r.Status = *c.Status
	}
	if c.Relationship != nil {
		r.Relationship = *c.Relationship
	}
	if c.FamilyCardID != nil {
		r.FamilyCardID = *c.FamilyCardID
	}
	r.Touch()
}

// ChangePlan describes which cards an update must lock and whether the
// single-head limit has to be re-counted under those locks.
type ChangePlan struct {
	Transfers      bool
	SourceCard     uuid.UUID
	TargetCard     uuid.UUID
	NeedsHeadCheck bool
	LockCards      []uuid.UUID
}

// PlanChange derives the locking plan for applying c to r.
//
// The head count is re-checked when the update could add an active head to
// a card: becoming head, being reactivated while head, or moving to another
// card as head. A transfer that needs the check locks both cards; a plain
// transfer only locks the destination to prove it is live.
func (r *Resident) PlanChange(c Change) ChangePlan {
	plan := ChangePlan{
		SourceCard: r.FamilyCardID,
		TargetCard: r.FamilyCardID,
	}

	if c.FamilyCardID != nil && *c.FamilyCardID != r.FamilyCardID {
		plan.Transfers = true
		plan.TargetCard = *c.FamilyCardID
	}

	effectiveRel := r.Relationship
	if c.Relationship != nil {
		effectiveRel = *c.Relationship
	}
	willBeHead := effectiveRel == RelationshipHead

	becomingHead := c.Relationship != nil && *c.Relationship == RelationshipHead && r.Relationship != RelationshipHead
	reactivatingAsHead := c.Status != nil && *c.Status == StatusActive && r.Status != StatusActive && willBeHead

	plan.NeedsHeadCheck = becomingHead || reactivatingAsHead || (plan.Transfers && willBeHead)

	switch {
	case plan.NeedsHeadCheck && plan.Transfers:
		plan.LockCards = []uuid.UUID{plan.SourceCard, plan.TargetCard}
	case plan.NeedsHeadCheck:
		plan.LockCards = []uuid.UUID{plan.SourceCard}
	case plan.Transfers:
		plan.LockCards = []uuid.UUID{plan.TargetCard}
	}

	return plan
}
