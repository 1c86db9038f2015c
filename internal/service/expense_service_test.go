package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestAddExpenseValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewExpenseService(f.deps)
	ctx := context.Background()
	ticket := f.createTicket(t, "Medium")

	cases := []struct {
		name  string
		input ExpenseInput
		field string
	}{
		{name: "zero amount", input: ExpenseInput{AmountCents: 0, Description: "cable", Date: fixedNow}, field: "amount"},
		{name: "blank description", input: ExpenseInput{AmountCents: 100, Description: "  ", Date: fixedNow}, field: "description"},
		{name: "missing date", input: ExpenseInput{AmountCents: 100, Description: "cable"}, field: "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddExpense(ctx, ticket.Ticket.ID, f.agent, tc.input)
			require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), "%v", err)
			assert.Equal(t, tc.field, apperrors.ToDomainError(err).Details["field"])
		})
	}

	_, err := svc.AddExpense(ctx, "missing", f.agent, ExpenseInput{AmountCents: 100, Description: "cable", Date: fixedNow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.AddExpense(ctx, ticket.Ticket.ID, f.user, ExpenseInput{AmountCents: 100, Description: "cable", Date: fixedNow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestExpenseOwnership(t *testing.T) {
	f := newFixture(t)
	svc := NewExpenseService(f.deps)
	ctx := context.Background()
	ticket := f.createTicket(t, "Medium")

	expense, err := svc.AddExpense(ctx, ticket.Ticket.ID, f.agent, ExpenseInput{AmountCents: 1999, Description: " HDMI cable ", Date: fixedNow.Add(5 * time.Hour), Billable: true})
	require.NoError(t, err)
	assert.Equal(t, "HDMI cable", expense.Description)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), expense.Date)

	other := f.addUser(t, "agent2", domain.RoleAgent)
	amount := int64(2500)
	_, err = svc.UpdateExpense(ctx, expense.ID, other, ExpenseUpdateInput{AmountCents: &amount})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	updated, err := svc.UpdateExpense(ctx, expense.ID, f.admin, ExpenseUpdateInput{AmountCents: &amount, Billable: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), updated.AmountCents)
	assert.False(t, updated.Billable)

	negative := int64(-5)
	_, err = svc.UpdateExpense(ctx, expense.ID, f.agent, ExpenseUpdateInput{AmountCents: &negative})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	assert.True(t, apperrors.HasCode(svc.DeleteExpense(ctx, expense.ID, other), apperrors.CodeForbidden))
	require.NoError(t, svc.DeleteExpense(ctx, expense.ID, f.agent))
	assert.True(t, apperrors.HasCode(svc.DeleteExpense(ctx, expense.ID, f.agent), apperrors.CodeNotFound))
}

func TestListExpensesFiltersAndTotals(t *testing.T) {
	f := newFixture(t)
	svc := NewExpenseService(f.deps)
	ctx := context.Background()
	first := f.createTicket(t, "Medium")
	second := f.createTicket(t, "High")

	add := func(ticketID string, cents int64, date time.Time, billable bool) {
		_, err := svc.AddExpense(ctx, ticketID, f.agent, ExpenseInput{AmountCents: cents, Description: "parts", Date: date, Billable: billable})
		require.NoError(t, err)
	}
	add(first.Ticket.ID, 1000, fixedNow, true)
	add(first.Ticket.ID, 250, fixedNow.Add(-48*time.Hour), false)
	add(second.Ticket.ID, 4000, fixedNow.Add(-24*time.Hour), true)

	sheet, err := svc.ListExpenses(ctx, f.agent, WorkQuery{})
	require.NoError(t, err)
	assert.Len(t, sheet.Expenses, 3)
	assert.Equal(t, int64(5250), sheet.TotalCents)
	assert.Equal(t, int64(5000), sheet.BillableCents)
	require.Len(t, sheet.ByUser, 1)
	assert.Equal(t, "agent", sheet.ByUser[0].Name)
	assert.Equal(t, 3, sheet.ByUser[0].Count)
	require.Len(t, sheet.ByTicket, 2)
	assert.Equal(t, second.Ticket.ID, sheet.ByTicket[0].TicketID)
	assert.Equal(t, int64(4000), sheet.ByTicket[0].Cents)
	assert.Equal(t, second.Key, sheet.ByTicket[0].Key)

	from := fixedNow.Add(-24 * time.Hour)
	to := fixedNow.Add(-24 * time.Hour)
	sheet, err = svc.ListExpenses(ctx, f.agent, WorkQuery{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, sheet.Expenses, 1)
	assert.Equal(t, int64(4000), sheet.Expenses[0].AmountCents)

	sheet, err = svc.ListExpenses(ctx, f.agent, WorkQuery{TicketID: &first.Ticket.ID, BillableOnly: true})
	require.NoError(t, err)
	require.Len(t, sheet.Expenses, 1)
	assert.Equal(t, int64(1000), sheet.TotalCents)
}
