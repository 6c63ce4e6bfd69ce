package faxjob

import "time"

type Status int

const (
	StatusError      Status = -1
	StatusPending    Status = 0
	StatusCompleted  Status = 1
	StatusProcessing Status = 2
)

// Statuses lists the defined statuses in display order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusError}

// Label returns the human-readable name, "Unknown" for undefined values.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	case StatusProcessing:
		return "Processing"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Class returns the machine-readable tag used by UIs for styling.
func (s Status) Class() string {
	switch s {
	case StatusPending:
		return "status-pending"
	case StatusCompleted:
		return "status-completed"
	case StatusProcessing:
		return "status-processing"
	case StatusError:
		return "status-error"
	default:
		return "status-unknown"
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusProcessing, StatusError:
		return true
	}
	return false
}

func (s Status) String() string { return s.Label() }

// TimestampLayout is the display format for created/updated timestamps.
const TimestampLayout = "2006年01月02日 15:04:05"

// Job is one fax transmission request as stored in fax_parameters.
// Optional text columns are empty when NULL.
type Job struct {
	ID               string    `json:"id"`
	FileURL          string    `json:"fileUrl,omitempty"`
	FaxNumber        string    `json:"faxNumber,omitempty"`
	Status           Status    `json:"status"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	ConvertedPDFPath string    `json:"convertedPdfPath,omitempty"`
	RequestUser      string    `json:"requestUser,omitempty"`
	FileName         string    `json:"fileName,omitempty"`
	CallbackURL      string    `json:"callbackUrl,omitempty"`
	OrderDestination string    `json:"orderDestination,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (j *Job) StatusLabel() string { return j.Status.Label() }
func (j *Job) StatusClass() string { return j.Status.Class() }

func (j *Job) IsPending() bool    { return j.Status == StatusPending }
func (j *Job) IsCompleted() bool  { return j.Status == StatusCompleted }
func (j *Job) IsProcessing() bool { return j.Status == StatusProcessing }
func (j *Job) IsError() bool      { return j.Status == StatusError }

func (j *Job) FormattedCreatedAt() string { return formatTimestamp(j.CreatedAt) }
func (j *Job) FormattedUpdatedAt() string { return formatTimestamp(j.UpdatedAt) }

// ProcessingTimeMinutes reports the whole minutes between creation and the
// last update. The result is negative if updated_at precedes created_at.
func (j *Job) ProcessingTimeMinutes() (int64, bool) {
	if j.CreatedAt.IsZero() || j.UpdatedAt.IsZero() {
		return 0, false
	}
	return int64(j.UpdatedAt.Sub(j.CreatedAt) / time.Minute), true
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimestampLayout)
}

// View is the JSON projection of a Job including its derived attributes.
type View struct {
	Job
	StatusLabel           string `json:"statusLabel"`
	StatusClass           string `json:"statusClass"`
	FormattedCreatedAt    string `json:"formattedCreatedAt"`
	FormattedUpdatedAt    string `json:"formattedUpdatedAt"`
	ProcessingTimeMinutes *int64 `json:"processingTimeMinutes"`
}

func (j *Job) View() View {
	v := View{
		Job:                *j,
		StatusLabel:        j.StatusLabel(),
		StatusClass:        j.StatusClass(),
		FormattedCreatedAt: j.FormattedCreatedAt(),
		FormattedUpdatedAt: j.FormattedUpdatedAt(),
	}
	if m, ok := j.ProcessingTimeMinutes(); ok {
		v.ProcessingTimeMinutes = &m
	}
	return v
}

func Views(jobs []Job) []View {
	out := make([]View, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobs[i].View())
	}
	return out
}

// Stats summarises the stored jobs.
type Stats struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	ByStatus map[Status]int64 `json:"byStatus"`
}
