package patient

import "github.com/ehr/journal/internal/platform/store"

// File layout of the patients collection.
const (
	FileName      = "patients.xml"
	CollectionTag = "patients"
	ItemTag       = "patient"
)

// Schema is the element layout of patients.xml.
var Schema = store.Schema{Collection: CollectionTag, Item: ItemTag}

// Patient is one <patient> element. Field order is element order on disk.
// A field whose element is missing decodes to "".
type Patient struct {
	ID   string `xml:"id"`   // generated, "p-" prefix
	CPR  string `xml:"cpr"`  // unique within the collection
	Name string `xml:"name"` // free text
	DOB  string `xml:"dob"`  // date of birth as submitted
}

// CreateRequest is the body of POST /patients:
//
//	<patient><cpr>…</cpr><name>…</name><dob>…</dob></patient>
//
// An id element in the body is ignored.
type CreateRequest struct {
	CPR  string `xml:"cpr"`
	Name string `xml:"name"`
	DOB  string `xml:"dob"`
}

// Seed is the content of a freshly created patients.xml.
func Seed() []Patient {
	return []Patient{
		{ID: "p-anna", CPR: "123456-7890", Name: "Anna Jensen", DOB: "1990-01-01"},
	}
}
