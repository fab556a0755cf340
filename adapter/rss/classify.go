package rss

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"

	"meetupsplit/domain"
)

type rssDoc struct {
	Channels []rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	PubDates []string `xml:"pubDate"`
}

func (it rssItem) pubDate() string {
	if len(it.PubDates) == 0 {
		return ""
	}
	return it.PubDates[0]
}

// Classifier implements domain.FeedClassifier over RSS 2.0 documents.
type Classifier struct{}

func (Classifier) Classify(data []byte, year int) (domain.Match, error) {
	return Classify(data, year)
}

// Classify looks at root/channel/item/pubDate only. A document without a
// channel is not an error; it just never matches.
func Classify(data []byte, year int) (domain.Match, error) {
	doc, err := decode(data)
	if err != nil {
		return domain.Match{}, domain.ParseError(err)
	}
	if len(doc.Channels) == 0 {
		return domain.Match{}, nil
	}

	var m domain.Match
	for _, it := range doc.Channels[0].Items {
		pub := it.pubDate()
		if pub == "" {
			continue
		}
		m.Seen++
		t, ok := ParsePubDate(pub)
		if !ok {
			continue
		}
		m.Parsed++
		if t.Year() == year {
			m.Matched = true
		}
	}
	return m, nil
}

// decode parses the whole input, so text before or after the root element
// is reported like any other syntax error.
func decode(data []byte) (rssDoc, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	start, err := rootElement(dec)
	if err != nil {
		return rssDoc{}, err
	}
	var doc rssDoc
	if err := dec.DecodeElement(&doc, &start); err != nil {
		return rssDoc{}, err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		if err != nil {
			return rssDoc{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return rssDoc{}, errors.New("junk after document element: <" + t.Name.Local + ">")
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return rssDoc{}, errors.New("junk after document element")
			}
		}
	}
}

// rootElement skips the prolog (declaration, comments, doctype, whitespace)
// and returns the first start element.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, errors.New("no element found")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return xml.StartElement{}, errors.New("not well-formed (invalid token)")
			}
		}
	}
}
