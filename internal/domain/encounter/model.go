package encounter

import "github.com/ehr/journal/internal/platform/store"

// File layout of the encounters collection.
const (
	FileName      = "encounters.xml"
	CollectionTag = "encounters"
	ItemTag       = "encounter"
)

// Schema is the element layout of encounters.xml.
var Schema = store.Schema{Collection: CollectionTag, Item: ItemTag}

// Encounter is one <encounter> element; a missing element decodes to "".
type Encounter struct {
	ID        string `xml:"id"`         // generated, "e-" prefix
	PatientID string `xml:"patient_id"` // soft reference to Patient.ID
	Start     string `xml:"start"`      // ISO-8601 UTC, set at creation
}
