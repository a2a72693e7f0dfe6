package tui

import (
	"fmt"
	"strings"

	"taskdesk/internal/modal"
	"taskdesk/internal/models"
	"taskdesk/internal/present"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldDue
	fieldAssignee
	fieldCount
)

var fieldNames = [fieldCount]string{"Title", "Description", "Status", "Priority", "Due", "Assignee"}

// form edits a task draft. Text fields use text inputs; enums and the
// assignee cycle with left/right.
type form struct {
	creating    bool
	taskID      int64
	title       textinput.Model
	description textinput.Model
	due         textinput.Model
	status      models.TaskStatus
	priority    models.TaskPriority
	assignee    int64
	focus       field
	saving      bool
	err         string
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 48
	in.SetValue(value)
	return in
}

// newForm prefills the form from the overlay state: blank with defaults
// when creating, the task's fields when editing.
func newForm(st modal.State) *form {
	d := models.NewDraft()
	if st.Task != nil {
		d = models.DraftFromTask(*st.Task)
	}
	f := &form{
		creating:    st.Creating(),
		taskID:      editedID(st),
		title:       newInput("What needs doing?", d.Title, 200),
		description: newInput("Details", d.Description, 2000),
		due:         newInput("YYYY-MM-DD", "", 10),
		status:      d.Status,
		priority:    d.Priority,
	}
	if d.DueDate != nil {
		f.due.SetValue(d.DueDate.String())
	}
	if d.AssignedToID != nil {
		f.assignee = *d.AssignedToID
	}
	f.title.Focus()
	return f
}

// editedID is the id of the task in the form, 0 for a new one.
func editedID(st modal.State) int64 {
	if st.Task == nil {
		return 0
	}
	return st.Task.ID
}

func (f *form) input(fl field) *textinput.Model {
	switch fl {
	case fieldTitle:
		return &f.title
	case fieldDescription:
		return &f.description
	case fieldDue:
		return &f.due
	}
	return nil
}

func (f *form) move(step int) {
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	f.focus = field((int(f.focus) + step + int(fieldCount)) % int(fieldCount))
	if in := f.input(f.focus); in != nil {
		in.Focus()
	}
}

// draft builds the request body. Due date syntax is checked here; the rest
// is validated by the store.
func (f *form) draft() (models.TaskDraft, error) {
	d := models.TaskDraft{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.description.Value()),
		Status:      f.status,
		Priority:    f.priority,
	}
	if v := strings.TrimSpace(f.due.Value()); v != "" {
		due, err := models.ParseDate(v)
		if err != nil {
			return models.TaskDraft{}, err
		}
		d.DueDate = &due
	}
	if f.assignee != 0 {
		id := f.assignee
		d.AssignedToID = &id
	}
	return d, nil
}

// update handles a key that is not a form-level command.
func (f *form) update(msg tea.KeyMsg, users []models.User) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return nil
	case "shift+tab", "up":
		f.move(-1)
		return nil
	}

	step := 0
	switch msg.String() {
	case "left":
		step = -1
	case "right", " ":
		step = 1
	}
	switch f.focus {
	case fieldStatus:
		if step != 0 {
			f.status = cycle(models.AllStatuses[:], f.status, step)
		}
		return nil
	case fieldPriority:
		if step != 0 {
			f.priority = cycle(models.AllPriorities[:], f.priority, step)
		}
		return nil
	case fieldAssignee:
		if step != 0 {
			f.assignee = cycle(assigneeOptions(users), f.assignee, step)
		}
		return nil
	}

	in := f.input(f.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (f *form) view(st styles, users []models.User, dark bool) string {
	var b strings.Builder
	heading := "Edit task"
	if f.creating {
		heading = "New task"
	}
	b.WriteString(st.title.Render(heading) + "\n\n")

	for fl := fieldTitle; fl < fieldCount; fl++ {
		label := st.label.Render(fieldNames[fl])
		if fl == f.focus {
			label = st.focused.Render(fieldNames[fl])
		}
		var value string
		switch fl {
		case fieldStatus:
			value = "< " + present.StatusBadge(f.status, dark) + " >"
		case fieldPriority:
			value = "< " + present.PriorityBadge(f.priority, dark) + " >"
		case fieldAssignee:
			value = "< " + userName(users, f.assignee) + " >"
		default:
			value = f.input(fl).View()
		}
		b.WriteString(label + " " + value + "\n")
	}

	b.WriteString("\n")
	switch {
	case f.saving:
		b.WriteString(st.muted.Render("Saving..."))
	case f.err != "":
		b.WriteString(st.notice.Render(f.err))
	default:
		b.WriteString(st.muted.Render("tab: next field  ←/→: change  ctrl+s: save  esc: cancel"))
	}
	return b.String()
}

func assigneeOptions(users []models.User) []int64 {
	ids := make([]int64, 0, len(users)+1)
	ids = append(ids, 0)
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func userName(users []models.User, id int64) string {
	if id == 0 {
		return "Unassigned"
	}
	for _, u := range users {
		if u.ID == id {
			return u.Name
		}
	}
	return fmt.Sprintf("user %d", id)
}

// cycle returns the option step places after cur, wrapping around. An
// unknown cur starts from the first option.
func cycle[T comparable](options []T, cur T, step int) T {
	if len(options) == 0 {
		return cur
	}
	i := -1
	for j, o := range options {
		if o == cur {
			i = j
			break
		}
	}
	if i < 0 {
		return options[0]
	}
	n := len(options)
	return options[((i+step)%n+n)%n]
}
