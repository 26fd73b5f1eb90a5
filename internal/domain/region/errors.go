package region

import "github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"

var (
	ErrRWNotFound     = shared.NewDomainError(shared.CodeNotFound, "RW not found")
	ErrRTNotFound     = shared.NewDomainError(shared.CodeNotFound, "RT not found")
	ErrRWNumberTaken  = shared.NewDomainError(shared.CodeAlreadyExists, "Nomor RW already exists")
	ErrRTNumberTaken  = shared.NewDomainError(shared.CodeAlreadyExists, "Nomor RT already exists in this RW")
	ErrInvalidNumber  = shared.NewDomainError(shared.CodeInvalidFormat, "Unit number must be 1 to 3 digits")
	ErrRWHasActiveRTs = shared.NewDomainError(shared.CodeConflict, "RW still has active RTs")
	ErrRTHasCards     = shared.NewDomainError(shared.CodeConflict, "RT still has active Kartu Keluarga")
)
