package note

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/ehr/journal/internal/platform/markup"
)

func randomText(r *rand.Rand) string {
	runes := []rune("Kontrol om 3 uger.n-e<>&\"'\t\n\ræøå€")
	n := r.Intn(20)
	if r.Intn(4) == 0 {
		n = 0
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(runes[r.Intn(len(runes))])
	}
	return sb.String()
}

func TestNote_RoundTrip(t *testing.T) {
	cfg := &quick.Config{
		MaxCount: 300,
		Values: func(args []reflect.Value, r *rand.Rand) {
			list := make([]Note, r.Intn(4))
			for i := range list {
				list[i] = Note{
					ID: randomText(r), EncounterID: randomText(r), Author: randomText(r),
					TS: randomText(r), Text: randomText(r),
				}
			}
			args[0] = reflect.ValueOf(list)
		},
	}
	prop := func(in []Note) bool {
		doc, err := markup.EncodeCollection(in, CollectionTag, ItemTag)
		if err != nil {
			return false
		}
		out, err := markup.DecodeCollection[Note](doc, CollectionTag, ItemTag)
		return err == nil && reflect.DeepEqual(out, in)
	}
	if err := quick.Check(prop, cfg); err != nil {
		t.Error(err)
	}
}

func TestNote_ElementLayout(t *testing.T) {
	doc, err := markup.EncodeCollection([]Note{
		{ID: "n-1", EncounterID: "e-1", Author: UnknownAuthor, TS: "2026-10-17T11:00:00.000Z", Text: "a < b & c"},
	}, CollectionTag, ItemTag)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<notes>\n" +
		"  <note>\n" +
		"    <id>n-1</id>\n" +
		"    <encounter_id>e-1</encounter_id>\n" +
		"    <author>unknown</author>\n" +
		"    <ts>2026-10-17T11:00:00.000Z</ts>\n" +
		"    <text>a &lt; b &amp; c</text>\n" +
		"  </note>\n" +
		"</notes>"
	if string(doc) != want {
		t.Errorf("got:\n%s\nwant:\n%s", doc, want)
	}
}
