package models

import (
	"strings"
	"time"
)

// UserRecord represents a user in the system
type UserRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	FirstName string `gorm:"column:first_name;not null"`
	LastName  string `gorm:"column:last_name;not null"`
	Role      Role   `gorm:"not null;default:'MEMBER'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for UserRecord
func (UserRecord) TableName() string {
	return "users"
}

// ToUser maps the record to its directory entry.
func (u UserRecord) ToUser() User {
	return User{
		ID:    u.ID,
		Name:  strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email: u.Email,
	}
}

// ToAccount maps the record to the authenticated account view.
func (u UserRecord) ToAccount() Account {
	return Account{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// TaskRecord represents a task in the system
type TaskRecord struct {
	ID           int64              `gorm:"primaryKey;autoIncrement"`
	Title        string             `gorm:"not null"`
	Description  string             `gorm:"type:text"`
	Status       TaskStatus         `gorm:"not null;default:'TODO';index"`
	Priority     TaskPriority       `gorm:"not null;default:'MEDIUM';index"`
	DueDate      *time.Time         `gorm:"column:due_date"`
	CreatedByID  int64              `gorm:"column:created_by_id;not null;index"`
	CreatedBy    UserRecord         `gorm:"foreignKey:CreatedByID"`
	AssignedToID *int64             `gorm:"column:assigned_to_id;index"`
	AssignedTo   *UserRecord        `gorm:"foreignKey:AssignedToID"`
	Files        []AttachmentRecord `gorm:"foreignKey:TaskID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for TaskRecord
func (TaskRecord) TableName() string {
	return "tasks"
}

// ToTask maps the record and its preloaded relations to the wire representation.
func (r TaskRecord) ToTask() Task {
	t := Task{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		Status:             r.Status,
		Priority:           r.Priority,
		CreatedByID:        r.CreatedByID,
		CreatedByFirstName: r.CreatedBy.FirstName,
		CreatedByLastName:  r.CreatedBy.LastName,
		Files:              make([]Attachment, 0, len(r.Files)),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.DueDate != nil {
		t.DueDate = &Date{r.DueDate.UTC()}
	}
	if r.AssignedToID != nil {
		id := *r.AssignedToID
		t.AssignedToID = &id
		if r.AssignedTo != nil {
			t.AssignedToFirstName = r.AssignedTo.FirstName
			t.AssignedToLastName = r.AssignedTo.LastName
		}
	}
	for _, f := range r.Files {
		t.Files = append(t.Files, f.ToAttachment())
	}
	return t
}

// ApplyDraft copies the editable fields of d onto the record.
func (r *TaskRecord) ApplyDraft(d TaskDraft) {
	r.Title = strings.TrimSpace(d.Title)
	r.Description = d.Description
	r.Status = d.Status
	r.Priority = d.Priority
	r.DueDate = nil
	if d.DueDate != nil && !d.DueDate.IsZero() {
		due := d.DueDate.Time
		r.DueDate = &due
	}
	r.AssignedToID = nil
	r.AssignedTo = nil
	if d.AssignedToID != nil {
		id := *d.AssignedToID
		r.AssignedToID = &id
	}
}

// AttachmentRecord represents a stored file attachment
type AttachmentRecord struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	TaskID           int64  `gorm:"column:task_id;not null;index"`
	FileName         string `gorm:"column:file_name;not null"`
	OriginalFileName string `gorm:"column:original_file_name;not null"`
	FilePath         string `gorm:"column:file_path;not null"`
	FileSize         int64  `gorm:"column:file_size"`
	ContentType      string `gorm:"column:content_type"`
	CreatedAt        time.Time
}

// TableName specifies the table name for AttachmentRecord
func (AttachmentRecord) TableName() string {
	return "file_attachments"
}

// ToAttachment maps the record to the wire representation.
func (a AttachmentRecord) ToAttachment() Attachment {
	return Attachment{
		ID:               a.ID,
		TaskID:           a.TaskID,
		FileName:         a.FileName,
		OriginalFileName: a.OriginalFileName,
		FileSize:         a.FileSize,
		ContentType:      a.ContentType,
		CreatedAt:        a.CreatedAt,
	}
}
