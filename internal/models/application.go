package models

// ApplicationDetail is the remote-sourced record for an existing application,
// fetched once per application number. Labels are resolved back to option
// identifiers when pre-populating the form.
type ApplicationDetail struct {
	ApplicationNo string `json:"applicationNo"`
	ZoneName      string `json:"zoneName"`
	CampusName    string `json:"campusName"`
	ProName       string `json:"proName"`
	DgmEmpName    string `json:"dgmEmpName"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

// SessionContext carries read-only ambient state injected into the
// orchestration layer at startup. Never read ad hoc mid-computation.
type SessionContext struct {
	CampusID     string `json:"campusId,omitempty"`
	CampusName   string `json:"campusName,omitempty"`
	AcademicYear string `json:"academicYear,omitempty"`
	UserID       string `json:"userId,omitempty"`
}
