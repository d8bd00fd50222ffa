package dgii

import (
	"net/http"
	"net/url"
)

// DefaultBaseURL is the DGII RNC consultation form.
const DefaultBaseURL = "https://dgii.gov.do/app/WebApps/ConsultasWeb2/ConsultasWeb/consultas/rnc.aspx"

// Form is the wire contract of the consultation page: the ids of the hidden
// anti-forgery inputs, the query and submit fields, and the ids of the result
// labels.
type Form struct {
	ViewStateID          string
	ViewStateGeneratorID string
	EventValidationID    string

	QueryField  string
	SubmitField string
	SubmitValue string

	NameID   string
	StatusID string
}

// DefaultForm returns the field ids the DGII page uses.
func DefaultForm() Form {
	return Form{
		ViewStateID:          "__VIEWSTATE",
		ViewStateGeneratorID: "__VIEWSTATEGENERATOR",
		EventValidationID:    "__EVENTVALIDATION",
		QueryField:           "rncCedula",
		SubmitField:          "btnConsultar",
		SubmitValue:          "Buscar",
		NameID:               "lblNombre",
		StatusID:             "lblEstado",
	}
}

// formSession is the state of one fetch+submit attempt. It is never reused.
type formSession struct {
	viewState          string
	viewStateGenerator string
	eventValidation    string

	// client carries a private cookie jar so the ASP.NET session cookie set
	// by the GET is replayed on the POST.
	client *http.Client
}

// payload builds the url-encoded POST body for identifier.
func (s *formSession) payload(f Form, identifier string) url.Values {
	return url.Values{
		f.ViewStateID:          {s.viewState},
		f.ViewStateGeneratorID: {s.viewStateGenerator},
		f.EventValidationID:    {s.eventValidation},
		f.QueryField:           {identifier},
		f.SubmitField:          {f.SubmitValue},
	}
}
