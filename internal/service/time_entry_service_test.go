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

func TestTimerLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTimeEntryService(f.deps)
	ticket := f.createTicket(t, "Medium").Ticket

	_, err := svc.StopTimer(ctx, ticket.ID, f.agent, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	started, err := svc.StartTimer(ctx, ticket.ID, f.agent, "triage", true)
	require.NoError(t, err)
	assert.True(t, started.Running())

	_, err = svc.StartTimer(ctx, ticket.ID, f.agent, "", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	f.advance(25 * time.Minute)
	stopped, err := svc.StopTimer(ctx, ticket.ID, f.agent, "rebooted router")
	require.NoError(t, err)
	assert.False(t, stopped.Running())
	assert.Equal(t, int64(1500), stopped.DurationSeconds)
	assert.Equal(t, "triage\nrebooted router", stopped.Notes)

	_, err = svc.AddManualEntry(ctx, ticket.ID, f.agent, ManualEntryInput{
		StartTime: fixedNow.Add(-time.Hour),
		EndTime:   fixedNow.Add(-30 * time.Minute),
	})
	require.NoError(t, err)

	sheet, err := svc.ListEntries(ctx, ticket.ID, f.agent)
	require.NoError(t, err)
	assert.Len(t, sheet.Entries, 2)
	assert.Equal(t, int64(1500+1800), sheet.TotalSeconds)

	_, err = svc.ListEntries(ctx, ticket.ID, f.user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestManualEntryRejectsInvertedInterval(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, "Medium").Ticket

	_, err := NewTimeEntryService(f.deps).AddManualEntry(context.Background(), ticket.ID, f.agent, ManualEntryInput{
		StartTime: fixedNow,
		EndTime:   fixedNow,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestEntryOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTimeEntryService(f.deps)
	ticket := f.createTicket(t, "Medium").Ticket
	other := f.addUser(t, "bob", domain.RoleAgent)

	entry, err := svc.AddManualEntry(ctx, ticket.ID, f.agent, ManualEntryInput{
		StartTime: fixedNow.Add(-time.Hour),
		EndTime:   fixedNow,
	})
	require.NoError(t, err)

	notes := "stolen"
	_, err = svc.UpdateEntry(ctx, entry.ID, other, EntryUpdateInput{Notes: &notes})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.True(t, apperrors.HasCode(svc.DeleteEntry(ctx, entry.ID, other), apperrors.CodeForbidden))

	earlier := fixedNow.Add(-2 * time.Hour)
	updated, err := svc.UpdateEntry(ctx, entry.ID, f.agent, EntryUpdateInput{StartTime: &earlier})
	require.NoError(t, err)
	assert.Equal(t, int64(7200), updated.DurationSeconds)

	late := fixedNow.Add(time.Hour)
	_, err = svc.UpdateEntry(ctx, entry.ID, f.agent, EntryUpdateInput{StartTime: &late})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	require.NoError(t, svc.DeleteEntry(ctx, entry.ID, f.admin))
	_, err = f.store.TimeEntries().GetByID(ctx, entry.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
