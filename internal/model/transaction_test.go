package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	for _, tt := range TransactionTypes {
		got, err := ParseTransactionType(string(tt))
		require.NoError(t, err)
		assert.Equal(t, tt, got)
	}

	_, err := ParseTransactionType("REFUND")
	assert.Error(t, err)
	_, err = ParseTransactionType("payment")
	assert.Error(t, err)
}

func TestDefaultVerified(t *testing.T) {
	assert.True(t, TypeConsumption.DefaultVerified())
	assert.True(t, TypePurchaseBote.DefaultVerified())
	assert.False(t, TypePayment.DefaultVerified())
	assert.False(t, TypeAdvance.DefaultVerified())
}

func TestTransactionPending(t *testing.T) {
	tests := []struct {
		tx   Transaction
		want bool
	}{
		{Transaction{Type: TypePayment}, true},
		{Transaction{Type: TypeAdvance}, true},
		{Transaction{Type: TypePayment, Verified: true}, false},
		{Transaction{Type: TypeConsumption}, false},
		{Transaction{Type: TypePurchaseBote}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tx.Pending(), "%s verified=%v", tt.tx.Type, tt.tx.Verified)
	}
}

func TestMemberMatchNames(t *testing.T) {
	m := Member{Name: "Marta", Bizum: "M. Lopez"}
	assert.Equal(t, []string{"Marta", "M. Lopez"}, m.MatchNames())

	assert.Equal(t, []string{"Marta"}, Member{Name: "Marta"}.MatchNames())
	assert.Nil(t, Member{}.MatchNames())
}

func TestMemberTransactionAlias(t *testing.T) {
	assert.Equal(t, "MA", Member{Alias: "MA"}.TransactionAlias())
	assert.Equal(t, "XX", Member{}.TransactionAlias())
}

func TestParseAlcoholPortion(t *testing.T) {
	p, err := ParseAlcoholPortion("")
	require.NoError(t, err)
	assert.Equal(t, PortionSingle, p)

	p, err = ParseAlcoholPortion("double")
	require.NoError(t, err)
	assert.Equal(t, PortionDouble, p)

	_, err = ParseAlcoholPortion("triple")
	assert.Error(t, err)
}
