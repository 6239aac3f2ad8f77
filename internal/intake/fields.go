// Package intake aggregates the multi-step form sections into one validated
// submission record and drives the final submit call.
package intake

import (
	"admissions-intake/internal/models"
)

// FieldKind tells the rendering layer how to present a field.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldDate   FieldKind = "date"
	FieldSelect FieldKind = "select"
)

// FieldDescriptor declares one form field. Select fields name the option
// category their choices come from; the rendering layer reports the chosen
// label back, not the identifier.
type FieldDescriptor struct {
	Name     string
	Label    string
	Kind     FieldKind
	Category models.CategoryKey // select fields only
	Required bool
}

// PersonalFields is the first form step.
var PersonalFields = []FieldDescriptor{
	{Name: "firstName", Label: "First Name", Kind: FieldText, Required: true},
	{Name: "lastName", Label: "Last Name", Kind: FieldText, Required: true},
	{Name: "email", Label: "Email", Kind: FieldText, Required: true},
	{Name: "mobileNumber", Label: "Mobile Number", Kind: FieldText},
	{Name: "dateOfBirth", Label: "Date of Birth", Kind: FieldDate},
	{Name: "gender", Label: "Gender", Kind: FieldSelect, Category: models.CategoryGender},
	{Name: "fatherName", Label: "Father Name", Kind: FieldText},
	{Name: "motherName", Label: "Mother Name", Kind: FieldText},
	{Name: "aadhaarNumber", Label: "Aadhaar Number", Kind: FieldText},
}

// OrientationFields is the second form step. Branch and joining class drive
// the class and orientation cascades.
var OrientationFields = []FieldDescriptor{
	{Name: "academicYear", Label: "Academic Year", Kind: FieldSelect, Required: true},
	{Name: "branch", Label: "Branch", Kind: FieldSelect, Category: models.CategoryCampusName, Required: true},
	{Name: "joiningClass", Label: "Joining Class", Kind: FieldSelect, Category: models.CategoryClass, Required: true},
	{Name: "orientation", Label: "Orientation", Kind: FieldSelect, Category: models.CategoryOrientation},
	{Name: "quota", Label: "Quota", Kind: FieldSelect, Category: models.CategoryQuota},
	{Name: "admissionType", Label: "Admission Type", Kind: FieldSelect, Category: models.CategoryAdmissionType},
	{Name: "admissionReferredBy", Label: "Admission Referred By", Kind: FieldSelect, Category: models.CategoryAdmissionReferredBy},
	{Name: "schoolName", Label: "Previous School", Kind: FieldText},
}

// AddressFields is the third form step.
var AddressFields = []FieldDescriptor{
	{Name: "doorNo", Label: "Door No", Kind: FieldText, Required: true},
	{Name: "streetName", Label: "Street Name", Kind: FieldText, Required: true},
	{Name: "landmark", Label: "Landmark", Kind: FieldText},
	{Name: "area", Label: "Area", Kind: FieldText},
	{Name: "city", Label: "City", Kind: FieldText, Required: true},
	{Name: "district", Label: "District", Kind: FieldText},
	{Name: "pincode", Label: "Pincode", Kind: FieldText, Required: true},
}

// paymentCommon is present for every payment mode.
var paymentCommon = []FieldDescriptor{
	{Name: "amount", Label: "Amount", Kind: FieldNumber, Required: true},
	{Name: "paymentMode", Label: "Payment Mode", Kind: FieldSelect, Required: true},
	{Name: "paymentDate", Label: "Payment Date", Kind: FieldDate},
	{Name: "authorizedBy", Label: "Authorized By", Kind: FieldSelect, Category: models.CategoryAuthorizedBy},
}

// paymentModeExtras adds the mode-specific instrument fields.
var paymentModeExtras = map[string][]FieldDescriptor{
	"Cash": {},
	"DD": {
		{Name: "ddNumber", Label: "DD Number", Kind: FieldText, Required: true},
		{Name: "ddDate", Label: "DD Date", Kind: FieldDate, Required: true},
		{Name: "bankName", Label: "Bank Name", Kind: FieldText, Required: true},
		{Name: "ifscCode", Label: "IFSC Code", Kind: FieldText},
	},
	"Cheque": {
		{Name: "chequeNumber", Label: "Cheque Number", Kind: FieldText, Required: true},
		{Name: "chequeDate", Label: "Cheque Date", Kind: FieldDate, Required: true},
		{Name: "bankName", Label: "Bank Name", Kind: FieldText, Required: true},
		{Name: "ifscCode", Label: "IFSC Code", Kind: FieldText},
	},
	"Card": {
		{Name: "transactionId", Label: "Transaction ID", Kind: FieldText, Required: true},
		{Name: "cardLastFour", Label: "Card Last 4 Digits", Kind: FieldText},
	},
}

// PaymentFields returns the payment-step descriptors for a payment mode. An
// unknown mode gets the common fields only.
func PaymentFields(mode string) []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(paymentCommon)+4)
	fields = append(fields, paymentCommon...)
	fields = append(fields, paymentModeExtras[mode]...)
	return fields
}

// SectionFields maps each section to its descriptors. The payment section is
// mode-dependent; its base set is returned here.
func SectionFields(section models.SectionKey, paymentMode string) []FieldDescriptor {
	switch section {
	case models.SectionPersonal:
		return PersonalFields
	case models.SectionOrientation:
		return OrientationFields
	case models.SectionAddress:
		return AddressFields
	case models.SectionPayment:
		return PaymentFields(paymentMode)
	default:
		return nil
	}
}
