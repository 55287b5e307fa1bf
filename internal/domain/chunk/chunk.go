// Package chunk splits a titled, field-bearing document into an ordered
// sequence of transmittable units, each under a fixed byte budget.
package chunk

import (
	"strings"

	"github.com/okian/podium/pkg/metrics"
)

// Budgets, analogous to a platform message-size ceiling.
const (
	// DocumentBudget caps one chunk's total size: title + description +
	// every field's name and value + footer text.
	DocumentBudget = 6000

	// FieldBudget caps a single field value built by JoinList.
	FieldBudget = 1024

	// moreMarker closes a truncated field value.
	moreMarker = "(and more...)\n"
)

// Field is one named section of a document.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Cost is the size a field contributes to its chunk.
func (f Field) Cost() int {
	return len(f.Name) + len(f.Value)
}

// Document is a presentable unit: optional header (title + description),
// ordered fields, and an optional footer carried by the final chunk.
type Document struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	FooterText  string  `json:"footer_text,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Timestamp   bool    `json:"timestamp,omitempty"`
}

// Size is the document's total cost against DocumentBudget.
func (d Document) Size() int {
	total := len(d.Title) + len(d.Description) + len(d.FooterText)
	for _, f := range d.Fields {
		total += f.Cost()
	}
	return total
}

// Split breaks doc into chunks that each fit DocumentBudget. Fields are
// never dropped, split, or reordered: a field that would overflow the
// current chunk opens the next one. Only the first chunk carries the
// header and only the last carries the footer, image, and timestamp.
//
// A single field too large for an empty chunk (net of header and footer)
// cannot be placed and yields ErrOversizedField.
func Split(doc Document) ([]Document, error) {
	headerCost := len(doc.Title) + len(doc.Description)
	footerCost := len(doc.FooterText)

	var chunks []Document
	cur := Document{Title: doc.Title, Description: doc.Description}
	curSize := headerCost

	for i, f := range doc.Fields {
		cost := f.Cost()
		extra := 0
		if i == len(doc.Fields)-1 {
			extra = footerCost
		}
		if curSize+cost+extra > DocumentBudget {
			if len(cur.Fields) == 0 && len(chunks) > 0 {
				return nil, ErrOversizedField
			}
			chunks = append(chunks, cur)
			cur = Document{}
			curSize = 0
			if cost+extra > DocumentBudget {
				return nil, ErrOversizedField
			}
		}
		cur.Fields = append(cur.Fields, f)
		curSize += cost
	}
	chunks = append(chunks, cur)

	last := &chunks[len(chunks)-1]
	last.FooterText = doc.FooterText
	last.ImageURL = doc.ImageURL
	last.Timestamp = doc.Timestamp

	if len(chunks) > 1 {
		metrics.RecordChunkSplit()
	}
	return chunks, nil
}

// JoinList concatenates items into one field value bounded by budget.
// When appending the next item would overflow (counting the closing
// marker), the marker is appended instead and enumeration stops. This is
// a truncation inside one field, never a new chunk.
func JoinList(items []string, budget int) string {
	var b strings.Builder
	for _, item := range items {
		if b.Len()+len(item)+len(moreMarker) > budget {
			b.WriteString(moreMarker)
			break
		}
		b.WriteString(item)
	}
	return b.String()
}

// HumanJoin renders items as natural-language enumeration:
// "a", "a and b", "a, b, and c".
func HumanJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	joined := make([]string, len(items))
	copy(joined, items)
	joined[len(joined)-1] = "and " + joined[len(joined)-1]
	return strings.Join(joined, ", ")
}
