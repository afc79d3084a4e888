package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsTableValidate(t *testing.T) {
	assert.Error(t, PointsTable{}.Validate())
	assert.Error(t, PointsTable{0: 10}.Validate())
	assert.Error(t, PointsTable{1: -5}.Validate())
	assert.NoError(t, PointsTable{1: 100, 2: 60, 3: 40}.Validate())
}

func TestPointsTableScanRoundTrip(t *testing.T) {
	original := PointsTable{1: 100, 2: 60}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded PointsTable
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)

	var nilTable PointsTable
	require.NoError(t, nilTable.Scan(nil))
	assert.Nil(t, nilTable)
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentCard.Valid())
	assert.True(t, PaymentTransfer.Valid())
	assert.False(t, PaymentMethod("crypto").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
