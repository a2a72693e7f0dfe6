// Package filter composes the discrete list filters and the debounced search
// term into one query.
package filter

import (
	"strings"
	"sync"

	"taskdesk/internal/models"
)

// Composer holds the current criteria. Every effective change invokes the
// change callback with the new criteria; setting a field to its current value
// is not a change.
type Composer struct {
	mu       sync.Mutex
	criteria models.FilterCriteria
	onChange func(models.FilterCriteria)
}

// New returns an empty Composer. onChange may be nil.
func New(onChange func(models.FilterCriteria)) *Composer {
	if onChange == nil {
		onChange = func(models.FilterCriteria) {}
	}
	return &Composer{onChange: onChange}
}

// Criteria returns a copy of the current criteria.
func (c *Composer) Criteria() models.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

func (c *Composer) update(apply func(*models.FilterCriteria)) bool {
	c.mu.Lock()
	next := c.criteria
	apply(&next)
	if next == c.criteria {
		c.mu.Unlock()
		return false
	}
	c.criteria = next
	c.mu.Unlock()

	c.onChange(next)
	return true
}

// SetStatus filters by status; "" removes the filter.
func (c *Composer) SetStatus(s models.TaskStatus) bool {
	return c.update(func(f *models.FilterCriteria) { f.Status = s })
}

// SetPriority filters by priority; "" removes the filter.
func (c *Composer) SetPriority(p models.TaskPriority) bool {
	return c.update(func(f *models.FilterCriteria) { f.Priority = p })
}

// SetAssignee filters by assignee id; 0 removes the filter.
func (c *Composer) SetAssignee(id int64) bool {
	return c.update(func(f *models.FilterCriteria) { f.Assignee = id })
}

// SetSearchTerm sets the debounced search text. Surrounding blanks are
// ignored, so an all-blank term removes the filter.
func (c *Composer) SetSearchTerm(term string) bool {
	term = strings.TrimSpace(term)
	return c.update(func(f *models.FilterCriteria) { f.SearchTerm = term })
}

// Clear resets every field at once and always triggers exactly one change,
// even when nothing was set.
func (c *Composer) Clear() {
	c.mu.Lock()
	c.criteria = models.FilterCriteria{}
	c.mu.Unlock()

	c.onChange(models.FilterCriteria{})
}
