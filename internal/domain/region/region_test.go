package region

import (
	"testing"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber(t *testing.T) {
	n, err := NormalizeNumber(" 003 ")
	require.NoError(t, err)
	assert.Equal(t, "003", n)

	for _, bad := range []string{"", "A1", "1234", "-1"} {
		_, err := NormalizeNumber(bad)
		assert.ErrorIs(t, err, ErrInvalidNumber, bad)
	}
}

func TestNewRW(t *testing.T) {
	rw, err := NewRW("01")
	require.NoError(t, err)
	assert.Equal(t, "01", rw.Number)
	assert.True(t, rw.IsActive())

	require.NoError(t, rw.Rename("02"))
	assert.Equal(t, "02", rw.Number)
	assert.ErrorIs(t, rw.Rename("x"), ErrInvalidNumber)
}

func TestNewRT(t *testing.T) {
	rwID := uuid.New()
	rt, err := NewRT("005", rwID)
	require.NoError(t, err)
	assert.Equal(t, rwID, rt.RWID)

	_, err = NewRT("005", uuid.Nil)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidFormat))

	other := uuid.New()
	num := "006"
	require.NoError(t, rt.Apply(RTChange{Number: &num, RWID: &other}))
	assert.Equal(t, "006", rt.Number)
	assert.Equal(t, other, rt.RWID)

	nilID := uuid.Nil
	assert.Error(t, rt.Apply(RTChange{RWID: &nilID}))
}
