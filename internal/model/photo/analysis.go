package photo

import "time"

// Analysis is the captioning output for a single uploaded photo. The summary
// composer treats these as loosely shaped input: any field may be empty.
type Analysis struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	SceneSummary   string    `json:"sceneSummary,omitempty"`
	SubjectType    string    `json:"subjectType,omitempty"`
	SubjectMood    string    `json:"subjectMood,omitempty"`
	NotableDetails []string  `json:"notableDetails,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
