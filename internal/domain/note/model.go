package note

import "github.com/ehr/journal/internal/platform/store"

// File layout of the notes collection.
const (
	FileName      = "notes.xml"
	CollectionTag = "notes"
	ItemTag       = "note"
)

// Schema is the element layout of notes.xml.
var Schema = store.Schema{Collection: CollectionTag, Item: ItemTag}

// UnknownAuthor is stored when a note is submitted without an author.
const UnknownAuthor = "unknown"

// Note is one <note> element; a missing element decodes to "".
type Note struct {
	ID          string `xml:"id"`           // generated, "n-" prefix
	EncounterID string `xml:"encounter_id"` // soft reference to Encounter.ID
	Author      string `xml:"author"`
	TS          string `xml:"ts"` // ISO-8601 UTC, set at creation
	Text        string `xml:"text"`
}

// CreateRequest is the body of POST /encounters/:eid/notes:
//
//	<note><author>…</author><text>…</text></note>
type CreateRequest struct {
	Author string `xml:"author"`
	Text   string `xml:"text"`
}
