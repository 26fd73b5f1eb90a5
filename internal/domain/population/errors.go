package population

import "github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"

var (
	ErrResidentNotFound    = shared.NewDomainError(shared.CodeNotFound, "Resident not found")
	ErrNIKTaken            = shared.NewDomainError(shared.CodeAlreadyExists, "NIK already registered")
	ErrInvalidNIK          = shared.NewDomainError(shared.CodeInvalidFormat, "NIK must be exactly 16 digits")
	ErrInvalidSex          = shared.NewDomainError(shared.CodeInvalidFormat, "Unknown sex")
	ErrInvalidRelationship = shared.NewDomainError(shared.CodeInvalidFormat, "Unknown household relationship")
	ErrInvalidStatus       = shared.NewDomainError(shared.CodeInvalidFormat, "Unknown resident status")
	ErrTerminalState       = shared.NewDomainError(shared.CodeInvalidTransition, "Cannot change status: MENINGGAL is a terminal state")
	ErrRecordFrozen        = shared.NewDomainError(shared.CodeInvalidTransition, "Cannot modify record: MENINGGAL is a terminal state")
	ErrHeadAlreadyActive   = shared.NewDomainError(shared.CodeInvariantViolation, "Family card already has an active Kepala Keluarga")
	ErrResidentChanged     = shared.NewDomainError(shared.CodeTransient, "Resident was modified by another request, retry")
)
