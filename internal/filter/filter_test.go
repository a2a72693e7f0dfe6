package filter

import (
	"testing"

	"taskdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func TestComposerTriggersOnChange(t *testing.T) {
	var seen []models.FilterCriteria
	c := New(func(f models.FilterCriteria) { seen = append(seen, f) })

	require.True(t, c.SetStatus(models.StatusDone))
	require.True(t, c.SetSearchTerm("  x "))
	require.False(t, c.SetSearchTerm("x"))
	require.False(t, c.SetStatus(models.StatusDone))
	require.True(t, c.SetPriority(models.PriorityHigh))
	require.True(t, c.SetAssignee(3))

	require.Len(t, seen, 4)
	require.Equal(t, models.FilterCriteria{Status: models.StatusDone}, seen[0])
	require.Equal(t, models.FilterCriteria{Status: models.StatusDone, SearchTerm: "x", Priority: models.PriorityHigh, Assignee: 3}, c.Criteria())
}

func TestClearResetsAllFieldsAndRefetchesOnce(t *testing.T) {
	var seen []models.FilterCriteria
	c := New(func(f models.FilterCriteria) { seen = append(seen, f) })

	c.SetStatus(models.StatusDone)
	c.SetSearchTerm("x")
	seen = nil

	c.Clear()
	require.Equal(t, []models.FilterCriteria{{}}, seen)
	require.True(t, c.Criteria().IsEmpty())
	require.Empty(t, c.Criteria().Values())

	c.Clear()
	require.Len(t, seen, 2)
}

func TestUnsetFieldsAreOmitted(t *testing.T) {
	c := New(nil)
	c.SetPriority(models.PriorityLow)
	c.SetSearchTerm("   ")

	q := c.Criteria().Values()
	require.Equal(t, "priority=LOW", q.Encode())
}
