package household

import "github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"

var (
	ErrCardNotFound      = shared.NewDomainError(shared.CodeNotFound, "Kartu Keluarga not found")
	ErrCardNumberTaken   = shared.NewDomainError(shared.CodeAlreadyExists, "Nomor KK already registered")
	ErrInvalidCardNumber = shared.NewDomainError(shared.CodeInvalidFormat, "Nomor KK must be exactly 16 digits")
	ErrCardHasMembers    = shared.NewDomainError(shared.CodeConflict, "Kartu Keluarga still has registered residents")
)
