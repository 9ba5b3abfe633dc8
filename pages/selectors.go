package pages

// Element ids of the admin console. The console exposes no stable role or
// label for these elements, so they are addressed by id.
const (
	// Login screen
	IDLoginUserName = "ctl00_ContentArea_loginViewControl_loginControl_userName"
	IDLoginPassword = "ctl00_ContentArea_loginViewControl_loginControl_Password"

	// Contact form
	IDPasswordInput        = "ctl00_content_passwordForm_memberFormRepeater_ctl00_passwordInput"
	IDConfirmPasswordInput = "ctl00_content_passwordForm_memberFormRepeater_ctl00_confirmPasswordInput"
	IDPasswordComplexity   = "ctl00_content_passwordForm_memberFormRepeater_ctl00_ctl08"
	IDPasswordMismatch     = "ctl00_content_passwordForm_memberFormRepeater_ctl00_ctl17"
	IDFirstNameInput       = "ctl00_content_contactForm_contactFormRepeater_ctl00_TextBox17569544"
	IDLastNameInput        = "ctl00_content_contactForm_contactFormRepeater_ctl01_TextBox17569545"
	IDOrganizationInput    = "ctl00_content_contactForm_contactFormRepeater_ctl02_TextBox17569546"
	IDEmailInput           = "ctl00_content_contactForm_contactFormRepeater_ctl03_TextBox17569543"
	IDInvalidEmail         = "ctl00_content_contactForm_contactFormRepeater_ctl03_ctl05"
	IDPhoneInput           = "ctl00_content_contactForm_contactFormRepeater_ctl04_TextBox17569549"
	UploaderFrameName      = "UploaderIframe17569547"

	// Member form
	IDMembershipLevel     = "ctl00_content_membershipLevelList"
	IDNotifyMember        = "ctl00_content_cbNotifyMember"
	IDMemberSinceToggle   = "ctl00_content_editMemberSince_PU_TG_CONT"
	IDMemberSinceWeekRows = "ctl00_content_editMemberSince_PU_PN_WeekRows"
	ClassCalendarDay      = "DES_CalDay"

	// List and search
	IDSearchBox             = "ctl00_content_SearchBox"
	IDRecordsFound          = "idRecordsFound"
	IDSavedSearchName       = "ctl00_content_savedSearchName"
	IDInnerHeader           = "ctl00_content_idInnerHeader"
	IDInnerHeaderAlternate  = "ctl00_content_idInnerHeaderAlternate"
	ClassResultTable        = "genericListTable"
	ClassSimpleResultLink   = "listMain"
	ClassAdvancedResultLink = "bold"
	ClassLabeledField       = "labeledTextContainer"
	ClassFieldBody          = "fieldBody"
	ClassTabContent         = "tab-content"
	ContentFrameName        = "contentarea"
	CriteriaDialogFrameName = "nmBaseIFrame_AdvancedSearch_AddCriteriaDialog"
	CriteriaFieldsFrameName = "nmReloadIFrame_AdvancedSearch_AddCriteriaDialog"
	criteriaInputIDPattern  = "ctl00_content_contactCriteriaList_criteriaList_ctl%02d_StringTextBox"
)

// Messages rendered by the console's inline validation and dialogs.
const (
	MessagePasswordComplexity = "Password does not meet complexity requirements"
	MessagePasswordMismatch   = "Passwords do not match"
	MessageInvalidEmail       = "Invalid email"
	MessageEmptyContactForm   = "You should fill at least one of these fields: First name, Last name, Organization, Email"
)

// Membership level option values.
const (
	MembershipLevelBasic     = "1758255"
	MembershipLevelCorporate = "1758256"
)

const (
	resultRowsSelector = "." + ClassResultTable + " tbody tr"
)

func byID(id string) string {
	return "#" + id
}

func frameByName(name string) string {
	return `iframe[name="` + name + `"]`
}
