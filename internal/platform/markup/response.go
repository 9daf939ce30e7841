package markup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

// MIMEApplicationXML is the content type of every response body.
const MIMEApplicationXML = "application/xml; charset=UTF-8"

// TimestampLayout is the ISO-8601 form used for encounter starts, note
// timestamps and the health document: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// EncodeCreated renders the body of a 201 response:
//
//	<root>
//	  <ok>true</ok>
//	  <itemTag>…</itemTag>
//	</root>
func EncodeCreated(itemTag string, item any) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "root"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("markup: encode created: %w", err)
	}
	if err := enc.EncodeElement(true, xml.StartElement{Name: xml.Name{Local: "ok"}}); err != nil {
		return nil, fmt.Errorf("markup: encode created: %w", err)
	}
	if err := enc.EncodeElement(item, xml.StartElement{Name: xml.Name{Local: itemTag}}); err != nil {
		return nil, fmt.Errorf("markup: encode created %s: %w", itemTag, err)
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("markup: encode created: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("markup: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeError renders <error>msg</error> with msg escaped.
func EncodeError(msg string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<error>")
	_ = xml.EscapeText(&buf, []byte(msg))
	buf.WriteString("</error>")
	return buf.Bytes()
}

type health struct {
	XMLName xml.Name `xml:"health"`
	OK      bool     `xml:"ok,attr"`
	Time    string   `xml:"time"`
}

// EncodeHealth renders <health ok="true"><time>…</time></health>.
func EncodeHealth(now time.Time) []byte {
	out, err := xml.Marshal(health{OK: true, Time: Timestamp(now)})
	if err != nil {
		// health holds only a bool and a formatted timestamp.
		panic(err)
	}
	return out
}
