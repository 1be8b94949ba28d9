package vmwiz

import "time"

// MinMax inclusive bounds of a numeric form field
type MinMax struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// VMOptions the selectable VM configuration
type VMOptions struct {
	Images []string `json:"image"`
	Cores  MinMax   `json:"cores"`
	RamGB  MinMax   `json:"ramGB"`
	DiskGB MinMax   `json:"diskGB"`
}

// VMRequestForm a VM request as submitted by a member
type VMRequestForm struct {
	Email          string `json:"email"`
	PersonalEmail  string `json:"personalEmail"`
	IsOrganization bool   `json:"isOrganization"`
	OrgName        string `json:"orgName"`

	Hostname string `json:"hostname"`
	Image    string `json:"image"`
	Cores    int    `json:"cores"`
	RamGB    int    `json:"ramGB"`
	DiskGB   int    `json:"diskGB"`

	SshPubkeys []string `json:"sshPubkey"`

	Comments    string `json:"comments"`
	AcceptTerms bool   `json:"accept_terms"`
}

// FormValidation per field errors returned with a 403 on submit
type FormValidation struct {
	Email         string   `json:"email"`
	PersonalEmail string   `json:"personalEmail"`
	OrgName       string   `json:"orgName"`
	Hostname      string   `json:"hostname"`
	Image         string   `json:"image"`
	Cores         string   `json:"cores"`
	RamGB         string   `json:"ramGB"`
	DiskGB        string   `json:"diskGB"`
	Explanation   string   `json:"explanation"`
	SshPubkeys    []string `json:"sshPubkey"`
	AcceptTerms   string   `json:"accept_terms"`
}

// Request status values of a stored VM request
const (
	RequestStatusPending  string = "pending"
	RequestStatusAccepted string = "accepted"
	RequestStatusRejected string = "rejected"
)

// VMRequest a stored VM request as listed for administrators
type VMRequest struct {
	ID             int64     `json:"ID"`
	CreatedAt      time.Time `json:"CreatedAt"`
	RequestStatus  string    `json:"RequestStatus"`
	Email          string    `json:"Email"`
	PersonalEmail  string    `json:"PersonalEmail"`
	IsOrganization bool      `json:"IsOrganization"`
	OrgName        string    `json:"OrgName"`
	Hostname       string    `json:"Hostname"`
	Image          string    `json:"Image"`
	Cores          int       `json:"Cores"`
	RamGB          int       `json:"RamGB"`
	DiskGB         int       `json:"DiskGB"`
	SshPubkeys     []string  `json:"SshPubkeys"`
	Comments       string    `json:"Comments"`
}

// IsPending the request still waits for a decision
func (r VMRequest) IsPending() bool {
	return r.RequestStatus == RequestStatusPending
}

// RequestID body of accept and reject calls
type RequestID struct {
	ID                int64  `json:"id"`
	ConfirmationToken string `json:"confirmationToken,omitempty"`
}

// EditVMRequest resource changes of a pending request, zero values are kept
type EditVMRequest struct {
	ID        int64  `json:"id"`
	Hostname  string `json:"hostname,omitempty"`
	CoresCPU  int    `json:"cores_cpu,omitempty"`
	RamGB     int    `json:"ram_gb,omitempty"`
	StorageGB int    `json:"storage_gb,omitempty"`
}

// ConfirmationToken token an administrator must echo to accept a request
type ConfirmationToken struct {
	ConfirmationToken string `json:"confirmationToken"`
}

// SurveyList ids of all usage surveys
type SurveyList struct {
	Surveys []int64 `json:"surveyIds"`
}

// SurveyInfo answer counts of one usage survey
type SurveyInfo struct {
	SurveyID     int64     `json:"surveyId"`
	Date         time.Time `json:"date"`
	Positive     int       `json:"positive"`
	Negative     int       `json:"negative"`
	NotResponded int       `json:"not_responded"`
	NotSent      int       `json:"not_sent"`
}

// SurveyStarted id of a freshly started usage survey
type SurveyStarted struct {
	SurveyID int64 `json:"surveyId"`
}

// SurveyAnswer a VM owner's answer to a usage survey mail.
// ID is the uuid from the mail link, Keep whether the VM is still needed.
type SurveyAnswer struct {
	ID   string `json:"id"`
	Keep bool   `json:"keep"`
}

// SurveyResponseKind selects one of the survey response listings
type SurveyResponseKind string

const (
	// SurveyPositive owners that still need their VM
	SurveyPositive SurveyResponseKind = "positive"
	// SurveyNegative owners whose VM can be deleted
	SurveyNegative SurveyResponseKind = "negative"
	// SurveyNotSent mails that could not be sent
	SurveyNotSent SurveyResponseKind = "notsent"
	// SurveyNotResponded owners that did not answer yet
	SurveyNotResponded SurveyResponseKind = "none"
)

// SurveyResponseKinds all listing kinds
var SurveyResponseKinds = []SurveyResponseKind{SurveyPositive, SurveyNegative, SurveyNotSent, SurveyNotResponded}

// Valid the kind names a known listing
func (k SurveyResponseKind) Valid() bool {
	for _, kind := range SurveyResponseKinds {
		if k == kind {
			return true
		}
	}
	return false
}
