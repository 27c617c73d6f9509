// Package filing implements the XML form dispatcher and parsers (spec §4.2):
// detect which IRS form variant a raw filing is, then extract Officers,
// Grants, Investments, GovernanceIndicator, and FinancialSummary.
//
// Parsing is namespace-aware and offset-tolerant: every lookup matches on an
// element's local name only, so any IRS XSD minor revision that adds,
// reorders, or re-namespaces fields is tolerated as long as the field names
// it cares about still appear somewhere under the expected section.
package filing

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// node is a namespace-agnostic generic XML element: its own local name,
// attributes, character data, and children, recursively.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Chardata string    `xml:",chardata"`
	Children []node    `xml:",any"`
}

func parseXML(data []byte) (*node, error) {
	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// local returns n's element name without its namespace prefix/URI.
func (n *node) local() string {
	return n.XMLName.Local
}

// text returns the element's own character data, trimmed.
func (n *node) text() string {
	return strings.TrimSpace(n.Chardata)
}

// findAll returns every descendant (including n itself) whose local name
// matches, in document order, short-circuiting descent into a match (IRS
// group wrappers do not nest same-named groups).
func (n *node) findAll(localName string) []*node {
	var out []*node
	n.walk(func(c *node) bool {
		if c.local() == localName {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}

// find returns the first descendant with the given local name.
func (n *node) find(localName string) (*node, bool) {
	all := n.findAll(localName)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// walk invokes fn on every descendant of n (n included) in document order;
// fn returns false to stop descending past that node.
func (n *node) walk(fn func(*node) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Children {
		n.Children[i].walk(fn)
	}
}

// childText returns the trimmed character data of the first direct-or-nested
// descendant named localName, or "" with ok=false if absent (per spec:
// missing optional element -> field absent).
func (n *node) childText(localName string) (string, bool) {
	c, ok := n.find(localName)
	if !ok {
		return "", false
	}
	return c.text(), true
}

// childFloat parses a numeric child: absent -> (0, false); present-but-empty
// -> (0, true) per "empty numeric element -> zero"; present-but-malformed ->
// (0, true, err) so callers can record a parse warning without failing the
// whole filing.
func (n *node) childFloat(localName string) (value float64, present bool, parseErr error) {
	text, ok := n.childText(localName)
	if !ok {
		return 0, false, nil
	}
	if text == "" {
		return 0, true, nil
	}
	cleaned := strings.ReplaceAll(text, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, true, err
	}
	return f, true, nil
}

// childBool interprets "X", "1", "true" (case-insensitive) as true; absent or
// anything else is false. IRS indicator elements are typically present-with-
// value "X" when checked and absent otherwise.
func (n *node) childBool(localName string) bool {
	text, ok := n.childText(localName)
	if !ok {
		return false
	}
	switch strings.ToUpper(text) {
	case "X", "1", "TRUE":
		return true
	default:
		return false
	}
}

func (n *node) childInt(localName string) (int, bool) {
	text, ok := n.childText(localName)
	if !ok || text == "" {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return i, true
}
