package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bote/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func payment(id string, memberID int, amount string) model.Transaction {
	return model.Transaction{
		ID:            id,
		TransactionID: "P" + id,
		Type:          model.TypePayment,
		Amount:        dec(amount),
		MemberID:      memberID,
	}
}

func movement(bankID, amount, desc string) model.BankMovement {
	return model.BankMovement{BankID: bankID, Amount: dec(amount), Description: desc}
}

var roster = []model.Member{
	{ID: 1, Name: "Marta", Alias: "MA", Bizum: "M LOPEZ GARCIA"},
	{ID: 2, Name: "Jon", Alias: "JO"},
	{ID: 3, Name: "Al", Alias: "AL"},
}

func TestBuild_MatchesByAmountAndName(t *testing.T) {
	pending := []model.Transaction{payment("t1", 1, "20")}
	mvs := []model.BankMovement{
		movement("b1", "20", "Bizum de JON"),
		movement("b2", "19.50", "Bizum de MARTA"),
		movement("b3", "20.00", "Transferencia de marta lopez"),
	}

	recs := Build(pending, mvs, roster, pending)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, ConfidenceHigh, r.Confidence)
	require.NotNil(t, r.BankMatch)
	assert.Equal(t, "b3", r.BankMatch.BankID)
	assert.Equal(t, "Marta", r.MemberName)
	assert.Equal(t, "marta lopez", r.CleanDescription)
	assert.True(t, r.Matched())
}

func TestBuild_AmountTolerance(t *testing.T) {
	pending := []model.Transaction{payment("t1", 2, "15.50")}

	recs := Build(pending, []model.BankMovement{movement("b1", "15.51", "Bizum JON")}, roster, nil)
	assert.Equal(t, ConfidenceHigh, recs[0].Confidence)

	recs = Build(pending, []model.BankMovement{movement("b1", "15.52", "Bizum JON")}, roster, nil)
	assert.Equal(t, ConfidenceNone, recs[0].Confidence)
	assert.Nil(t, recs[0].BankMatch)
}

func TestBuild_MatchesAlternatePayeeName(t *testing.T) {
	pending := []model.Transaction{payment("t1", 1, "8")}
	mvs := []model.BankMovement{movement("b1", "8", "BIZUM RECIBIDO M LOPEZ GARCIA")}

	recs := Build(pending, mvs, roster, nil)
	require.True(t, recs[0].Matched())
	assert.Equal(t, "M LOPEZ GARCIA", recs[0].CleanDescription)
}

func TestBuild_SameMovementNotClaimedTwice(t *testing.T) {
	pending := []model.Transaction{payment("t1", 2, "10"), payment("t2", 2, "10")}
	mvs := []model.BankMovement{movement("b1", "10", "Bizum de Jon")}

	recs := Build(pending, mvs, roster, nil)
	require.Len(t, recs, 2)
	assert.Equal(t, ConfidenceHigh, recs[0].Confidence)
	assert.Equal(t, "t1", recs[0].Transaction.ID)
	assert.Equal(t, ConfidenceNone, recs[1].Confidence)
	assert.Nil(t, recs[1].BankMatch)
}

func TestBuild_GreedyFirstMatchInStatementOrder(t *testing.T) {
	pending := []model.Transaction{payment("t1", 2, "10"), payment("t2", 2, "10")}
	mvs := []model.BankMovement{
		movement("b1", "10", "Bizum de Jon"),
		movement("b2", "10", "Bizum de Jon otra vez"),
	}

	recs := Build(pending, mvs, roster, nil)
	assert.Equal(t, "b1", recs[0].BankMatch.BankID)
	assert.Equal(t, "b2", recs[1].BankMatch.BankID)
}

func TestBuild_ShortNamesNeverMatch(t *testing.T) {
	pending := []model.Transaction{payment("t1", 3, "5")}
	mvs := []model.BankMovement{movement("b1", "5", "Bizum de Alfonso Ruiz")}

	recs := Build(pending, mvs, roster, nil)
	assert.Equal(t, ConfidenceNone, recs[0].Confidence)
	assert.Equal(t, "Al", recs[0].MemberName)
}

func TestBuild_SkipsAlreadyLinkedBankIDs(t *testing.T) {
	pending := []model.Transaction{payment("t1", 2, "10")}
	verified := payment("t0", 2, "10")
	verified.Verified = true
	verified.BankID = "b1"
	all := []model.Transaction{verified, pending[0]}

	mvs := []model.BankMovement{
		movement("b1", "10", "Bizum de Jon"),
		movement("b2", "10", "Bizum de Jon"),
	}

	recs := Build(pending, mvs, roster, all)
	require.True(t, recs[0].Matched())
	assert.Equal(t, "b2", recs[0].BankMatch.BankID)
}

func TestBuild_UnknownMember(t *testing.T) {
	pending := []model.Transaction{payment("t1", 99, "10")}
	mvs := []model.BankMovement{movement("b1", "10", "Unknown sender")}

	recs := Build(pending, mvs, roster, nil)
	assert.Equal(t, UnknownMember, recs[0].MemberName)
	assert.Equal(t, ConfidenceNone, recs[0].Confidence)
}

func TestBuild_AdvancesAndOnlyPending(t *testing.T) {
	adv := payment("t1", 2, "30")
	adv.Type = model.TypeAdvance
	done := payment("t2", 2, "30")
	done.Verified = true
	cons := payment("t3", 2, "30")
	cons.Type = model.TypeConsumption

	mvs := []model.BankMovement{movement("b1", "30", "JON")}
	recs := Build([]model.Transaction{done, cons, adv}, mvs, roster, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "t1", recs[0].Transaction.ID)
	assert.True(t, recs[0].Matched())
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil, []model.BankMovement{movement("b1", "1", "x")}, roster, nil))

	recs := Build([]model.Transaction{payment("t1", 1, "5")}, nil, roster, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, ConfidenceNone, recs[0].Confidence)
}

func TestMatcher_Configurable(t *testing.T) {
	m := Matcher{Tolerance: dec("0.5"), MinNameLength: 2}
	pending := []model.Transaction{payment("t1", 3, "5")}
	mvs := []model.BankMovement{movement("b1", "5.40", "Bizum AL")}

	recs := m.Build(pending, mvs, roster, nil)
	assert.True(t, recs[0].Matched())
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		desc  string
		names []string
		want  string
	}{
		{"Bizum de MARTA concepto", []string{"Marta"}, "MARTA concepto"},
		{"TRANSF M LOPEZ / Marta", []string{"Marta", "M LOPEZ"}, "M LOPEZ / Marta"},
		{"no names here", []string{"Marta"}, "no names here"},
		{"anything", nil, "anything"},
		{"Pago de Íñigo Pérez", []string{"íñigo"}, "Íñigo Pérez"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanDescription(tt.desc, tt.names), "CleanDescription(%q)", tt.desc)
	}
}

func TestIndexFold(t *testing.T) {
	assert.Equal(t, 9, indexFold("Bizum de MARTA", "marta"))
	assert.Equal(t, -1, indexFold("Bizum", "marta"))
	assert.Equal(t, 0, indexFold("abc", ""))
	assert.Equal(t, 8, indexFold("Pago de Íñigo", "ÍÑIGO"))
}
