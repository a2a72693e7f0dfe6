package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// AllStatuses lists every status in display order. The position of a status
// in this array is its ordinal (see Index).
var AllStatuses = [...]TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// StatusCount is the number of task statuses.
const StatusCount = len(AllStatuses)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// AllPriorities lists every priority from lowest to highest.
var AllPriorities = [...]TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// PriorityCount is the number of task priorities.
const PriorityCount = len(AllPriorities)

// Index returns the ordinal of the status, or -1 when it is not a known value.
func (s TaskStatus) Index() int {
	for i, v := range AllStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool { return s.Index() >= 0 }

// Index returns the ordinal of the priority, or -1 when it is not a known value.
func (p TaskPriority) Index() int {
	for i, v := range AllPriorities {
		if v == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the enumerated priorities.
func (p TaskPriority) Valid() bool { return p.Index() >= 0 }

// ParseStatus accepts the wire value case-insensitively ("done", "in_progress", "IN-PROGRESS").
func ParseStatus(s string) (TaskStatus, error) {
	v := TaskStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !v.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return v, nil
}

// ParsePriority accepts the wire value case-insensitively.
func ParsePriority(s string) (TaskPriority, error) {
	v := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return v, nil
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Attachment is a file bound to exactly one task.
type Attachment struct {
	ID               int64     `json:"id"`
	TaskID           int64     `json:"taskId,omitempty"`
	FileName         string    `json:"fileName"`
	OriginalFileName string    `json:"originalFileName"`
	FileSize         int64     `json:"fileSize"`
	ContentType      string    `json:"contentType,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SizeKB returns the file size in kilobytes, the unit the detail view shows.
func (a Attachment) SizeKB() float64 {
	return float64(a.FileSize) / 1024
}

// Task represents a task as returned by the remote store
type Task struct {
	ID                  int64        `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	Status              TaskStatus   `json:"status"`
	Priority            TaskPriority `json:"priority"`
	DueDate             *Date        `json:"dueDate,omitempty"`
	CreatedByID         int64        `json:"createdById"`
	CreatedByFirstName  string       `json:"createdByFirstName"`
	CreatedByLastName   string       `json:"createdByLastName"`
	AssignedToID        *int64       `json:"assignedToId,omitempty"`
	AssignedToFirstName string       `json:"assignedToFirstName,omitempty"`
	AssignedToLastName  string       `json:"assignedToLastName,omitempty"`
	Files               []Attachment `json:"files"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Unassigned reports whether nobody is assigned to the task.
func (t Task) Unassigned() bool { return t.AssignedToID == nil }

// AssigneeName returns the assignee display name, or "" when unassigned.
func (t Task) AssigneeName() string {
	if t.Unassigned() {
		return ""
	}
	return strings.TrimSpace(t.AssignedToFirstName + " " + t.AssignedToLastName)
}

// CreatorName returns the creator display name.
func (t Task) CreatorName() string {
	return strings.TrimSpace(t.CreatedByFirstName + " " + t.CreatedByLastName)
}

// FileByID looks up an attachment of the task.
func (t Task) FileByID(id int64) (Attachment, bool) {
	for _, f := range t.Files {
		if f.ID == id {
			return f, true
		}
	}
	return Attachment{}, false
}

// TaskDraft is the body of create and update requests.
type TaskDraft struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *Date        `json:"dueDate"`
	AssignedToID *int64       `json:"assignedToId"`
}

// NewDraft returns an empty draft with the defaults of the create form.
func NewDraft() TaskDraft {
	return TaskDraft{Status: StatusTodo, Priority: PriorityMedium}
}

// DraftFromTask prefills a draft with the editable fields of t.
func DraftFromTask(t Task) TaskDraft {
	d := TaskDraft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
	if t.AssignedToID != nil {
		id := *t.AssignedToID
		d.AssignedToID = &id
	}
	return d
}

// Validate checks the required fields. It returns a *ValidationError.
func (d TaskDraft) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = "Title is required"
	}
	if d.Status == "" {
		fields["status"] = "Status is required"
	} else if !d.Status.Valid() {
		fields["status"] = fmt.Sprintf("Unknown status %q", d.Status)
	}
	if d.Priority == "" {
		fields["priority"] = "Priority is required"
	} else if !d.Priority.Valid() {
		fields["priority"] = fmt.Sprintf("Unknown priority %q", d.Priority)
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidationError reports missing or malformed task fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FilterCriteria narrows the task list. Zero-valued fields are absent;
// present fields combine with AND.
type FilterCriteria struct {
	Status     TaskStatus
	Priority   TaskPriority
	Assignee   int64
	SearchTerm string
}

// IsEmpty reports whether no field is set.
func (f FilterCriteria) IsEmpty() bool {
	return f == FilterCriteria{}
}

// Values encodes the set fields as query parameters. Unset fields are omitted.
func (f FilterCriteria) Values() url.Values {
	q := url.Values{}
	if f.SearchTerm != "" {
		q.Set("search", f.SearchTerm)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Assignee != 0 {
		q.Set("assignee", strconv.FormatInt(f.Assignee, 10))
	}
	return q
}

// DashboardStats summarises the whole task collection.
type DashboardStats struct {
	TotalTasks      int64            `json:"totalTasks"`
	TasksByStatus   map[string]int64 `json:"tasksByStatus"`
	TasksByPriority map[string]int64 `json:"tasksByPriority"`
	RecentTasks     []Task           `json:"recentTasks"`
}
