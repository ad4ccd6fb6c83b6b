package export

// =============================================================================
// XML EXPORT
// =============================================================================
//
// Group exports nest line items inside their submission:
//
//   <submissions>
//     <submission n="1" key="roads||p1||09:00||2026-01-10">
//       <day>2026-01-10</day>
//       <sector>Roads</sector>
//       ...
//       <lineItem n="1">                  <!-- global numbering by default -->
//         <vendor>Acme</vendor>
//         ...
//       </lineItem>
//     </submission>
//   </submissions>
//
// Record exports are flat: <records><record n="1">...</record></records>.
// Empty values produce self-closing elements.
//
// =============================================================================

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/payables-dashboard/internal/types"
)

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// LineItemNumberingGlobal numbers line items 1, 2, 3... across all
	// submissions. When false, numbering restarts in each submission.
	// Default: true
	LineItemNumberingGlobal bool

	// IndexAttribute is the attribute carrying element indexes.
	// Default: "n"
	IndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                  "  ",
		IncludeXMLDeclaration:   true,
		LineItemNumberingGlobal: true,
		IndexAttribute:          "n",
	}
}

// element is a generic XML element: either a text value or children.
type element struct {
	name     string
	attrs    [][2]string
	value    string
	children []element
}

func simple(name, value string) element {
	return element{name: name, value: value}
}

// WriteGroupsXML writes submissions with their nested line items.
func WriteGroupsXML(w io.Writer, groups []types.SubmissionGroup, options GenerateOptions) error {
	root := element{name: "submissions"}
	lineIndex := 1

	for i, g := range groups {
		sub := element{
			name:  "submission",
			attrs: [][2]string{{options.IndexAttribute, strconv.Itoa(i + 1)}, {"key", g.Key}},
			children: []element{
				simple("day", g.Day),
				simple("sector", g.Sector),
				simple("project", g.Project),
				simple("submissionTime", g.SubmissionTime),
				simple("status", string(g.Status)),
				simple("lineItems", strconv.Itoa(g.LineItems())),
				simple("effectiveTotal", Amount(g.Total)),
				simple("paid", Amount(g.Paid)),
				simple("remaining", Amount(g.Remaining)),
			},
		}

		if !options.LineItemNumberingGlobal {
			lineIndex = 1
		}
		for _, m := range g.Members {
			sub.children = append(sub.children, recordElement("lineItem", m, lineIndex, options))
			lineIndex++
		}

		root.children = append(root.children, sub)
	}

	return writeDocument(w, root, options)
}

// WriteRecordsXML writes records as a flat list.
func WriteRecordsXML(w io.Writer, records []types.Record, options GenerateOptions) error {
	root := element{name: "records"}
	for i, r := range records {
		root.children = append(root.children, recordElement("record", r, i+1, options))
	}
	return writeDocument(w, root, options)
}

// recordElement renders one record with its canonical fields in export
// order, camel-cased.
func recordElement(name string, r types.Record, index int, options GenerateOptions) element {
	el := element{
		name: name,
		attrs: [][2]string{
			{options.IndexAttribute, strconv.Itoa(index)},
			{"row", strconv.Itoa(r.RowNumber)},
		},
	}
	for _, f := range types.CanonicalFields {
		el.children = append(el.children, simple(tagName(string(f)), recordCell(r, f)))
	}
	el.children = append(el.children,
		simple("effectiveTotal", Amount(r.EffectiveTotal)),
		simple("remaining", Amount(r.Remaining)),
	)
	return el
}

// tagName turns a snake_case field into a camelCase element name.
func tagName(field string) string {
	parts := strings.Split(field, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// =============================================================================
// SERIALIZATION
// =============================================================================

func writeDocument(w io.Writer, root element, options GenerateOptions) error {
	bw := bufio.NewWriter(w)
	if options.IncludeXMLDeclaration {
		bw.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	}
	writeElement(bw, root, options.Indent, 0)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// writeElement writes an element with indentation.
func writeElement(bw *bufio.Writer, el element, indent string, level int) {
	pad := strings.Repeat(indent, level)

	bw.WriteString(pad)
	bw.WriteString("<")
	bw.WriteString(el.name)
	for _, attr := range el.attrs {
		fmt.Fprintf(bw, " %s=\"%s\"", attr[0], escapeXML(attr[1]))
	}

	if len(el.children) == 0 && el.value == "" {
		bw.WriteString("/>\n")
		return
	}
	bw.WriteString(">")

	if len(el.children) == 0 {
		bw.WriteString(escapeXML(el.value))
	} else {
		bw.WriteString("\n")
		for _, child := range el.children {
			writeElement(bw, child, indent, level+1)
		}
		bw.WriteString(pad)
	}

	bw.WriteString("</")
	bw.WriteString(el.name)
	bw.WriteString(">\n")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
