// Package xml provides an XML codec for encoding casts.
//
// encoding/xml cannot encode untyped slices, so lists are written as
// <list><item>...</item></list> with each item in its text form. Decoding a
// list yields strings.
package xml

import (
	"encoding/xml"
	"fmt"

	"github.com/zoobzio/record"
)

// Name is the codec name used in cast options ("collection:xml").
const Name = "xml"

type list struct {
	XMLName xml.Name `xml:"list"`
	Items   []string `xml:"item"`
}

type xmlCodec struct{}

// New returns an XML codec.
func New() record.Codec {
	return &xmlCodec{}
}

// Register makes the codec available to casts under Name.
func Register() {
	record.RegisterCodec(Name, New())
}

func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	switch items := v.(type) {
	case []string:
		return xml.Marshal(list{Items: items})
	case []any:
		l := list{Items: make([]string, len(items))}
		for i, item := range items {
			l.Items[i] = fmt.Sprint(item)
		}
		return xml.Marshal(l)
	default:
		return xml.Marshal(v)
	}
}

// Unmarshal decodes XML data into v.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	switch dst := v.(type) {
	case *[]string:
		var l list
		if err := xml.Unmarshal(data, &l); err != nil {
			return err
		}
		*dst = l.Items
		return nil
	case *[]any, *any:
		var l list
		if err := xml.Unmarshal(data, &l); err != nil {
			return err
		}
		items := make([]any, len(l.Items))
		for i, item := range l.Items {
			items[i] = item
		}
		if p, ok := dst.(*[]any); ok {
			*p = items
		} else {
			*dst.(*any) = items
		}
		return nil
	default:
		return xml.Unmarshal(data, v)
	}
}
