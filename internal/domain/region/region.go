// Package region holds the village's administrative sub-units: RW (rukun
// warga) and the RTs (rukun tetangga) grouped under each RW.
package region

import (
	"regexp"
	"strings"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
)

var unitNumberPattern = regexp.MustCompile(`^\d{1,3}$`)

// NormalizeNumber trims and validates an RW/RT number such as "003"
func NormalizeNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if !unitNumberPattern.MatchString(number) {
		return "", ErrInvalidNumber
	}
	return number, nil
}

// RW is a rukun warga
type RW struct {
	shared.BaseEntity
	shared.SoftDeletable
	Number string
}

// NewRW builds a live RW
func NewRW(number string) (*RW, error) {
	n, err := NormalizeNumber(number)
	if err != nil {
		return nil, err
	}
	return &RW{BaseEntity: shared.NewBaseEntity(), Number: n}, nil
}

// Rename changes the RW number
func (r *RW) Rename(number string) error {
	n, err := NormalizeNumber(number)
	if err != nil {
		return err
	}
	r.Number = n
	r.Touch()
	return nil
}

// RT is a rukun tetangga belonging to one RW
type RT struct {
	shared.BaseEntity
	shared.SoftDeletable
	Number string
	RWID   uuid.UUID
}

// NewRT builds a live RT under rwID
func NewRT(number string, rwID uuid.UUID) (*RT, error) {
	n, err := NormalizeNumber(number)
	if err != nil {
		return nil, err
	}
	if rwID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidFormat, "RW is required")
	}
	return &RT{BaseEntity: shared.NewBaseEntity(), Number: n, RWID: rwID}, nil
}

// RTChange is a partial update of an RT
type RTChange struct {
	Number *string
	RWID   *uuid.UUID
}

// Apply validates and writes c onto the RT
func (r *RT) Apply(c RTChange) error {
	if c.Number != nil {
		n, err := NormalizeNumber(*c.Number)
		if err != nil {
			return err
		}
		r.Number = n
	}
	if c.RWID != nil {
		if *c.RWID == uuid.Nil {
			return shared.NewDomainError(shared.CodeInvalidFormat, "RW cannot be empty")
		}
		r.RWID = *c.RWID
	}
	r.Touch()
	return nil
}
