// Package household models the family card (Kartu Keluarga), the unit every
// resident belongs to and the row that serializes membership changes.
package household

import (
	"regexp"
	"strings"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

var cardNumberPattern = regexp.MustCompile(`^\d{16}$`)

// ValidateNumber checks a family card number is exactly 16 digits
func ValidateNumber(number string) error {
	if !cardNumberPattern.MatchString(number) {
		return ErrInvalidCardNumber
	}
	return nil
}

// FamilyCard groups residents into a household registered under an RT
type FamilyCard struct {
	shared.BaseEntity
	shared.SoftDeletable
	Number  string
	Address string
	RTID    uuid.UUID
}

// NewFamilyCard validates and builds a live family card
func NewFamilyCard(number, address string, rtID uuid.UUID) (*FamilyCard, error) {
	if err := ValidateNumber(number); err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidFormat, "Address is required")
	}
	if rtID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidFormat, "RT is required")
	}

	return &FamilyCard{
		BaseEntity: shared.NewBaseEntity(),
		Number:     number,
		Address:    address,
		RTID:       rtID,
	}, nil
}

// CardChange is a partial update of a family card
type CardChange struct {
	Number  *string
	Address *string
	RTID    *uuid.UUID
}

// Validate checks the fields present in c
func (c CardChange) Validate() error {
	if c.Number != nil {
		if err := ValidateNumber(*c.Number); err != nil {
			return err
		}
	}
	if c.Address != nil && strings.TrimSpace(*c.Address) == "" {
		return shared.NewDomainError(shared.CodeInvalidFormat, "Address cannot be empty")
	}
	if c.RTID != nil && *c.RTID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidFormat, "RT cannot be empty")
	}
	return nil
}

// Apply writes c onto the card
func (f *FamilyCard) Apply(c CardChange) {
	if c.Number != nil {
		f.Number = *c.Number
	}
	if c.Address != nil {
		f.Address = strings.TrimSpace(*c.Address)
	}
	if c.RTID != nil {
		f.RTID = *c.RTID
	}
	f.Touch()
}

// Retire archives the card
func (f *FamilyCard) Retire(at time.Time) error {
	if !f.IsActive() {
		return ErrCardNotFound
	}
	f.Archive(at)
	f.Touch()
	return nil
}
