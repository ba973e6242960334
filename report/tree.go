// Package report builds financial statements from ledger balances. Reports
// are trees of sections, rows and derived rows with a deterministic
// children-before-parents calculation pass, an id-addressable lookup and a
// CSV projection.
package report

import "encoding/json"

// Cell is one column value of a report row. A blank cell marks a column that
// has no value for the row, as opposed to a zero value.
type Cell struct {
	Quantity int64
	Blank    bool
}

// Value returns a populated cell.
func Value(quantity int64) Cell { return Cell{Quantity: quantity} }

// BlankCell returns a cell with no value.
func BlankCell() Cell { return Cell{Blank: true} }

// MarshalJSON renders blank cells as null and populated cells as numbers.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Blank {
		return []byte("null"), nil
	}
	return json.Marshal(c.Quantity)
}

// Node is one entry of a report tree. The variants are Section, Row,
// Subtotal, Computed and Spacer; no other implementations exist.
type Node interface{ node() }

// Section groups nodes under a title.
type Section struct {
	Title    string `json:"title,omitempty"`
	ID       string `json:"id,omitempty"`
	Visible  bool   `json:"visible"`
	AutoHide bool   `json:"autoHide,omitempty"`
	Nodes    []Node `json:"-"`
}

// Row is a literal report line.
type Row struct {
	Text     string `json:"text"`
	Cells    []Cell `json:"cells"`
	ID       string `json:"id,omitempty"`
	Visible  bool   `json:"visible"`
	AutoHide bool   `json:"autoHide,omitempty"`
	Link     string `json:"link,omitempty"`
	Heading  bool   `json:"heading,omitempty"`
	Bordered bool   `json:"bordered,omitempty"`
}

// Subtotal sums the Row siblings of its own section, ignoring nested
// sections, other subtotals and computed rows. Its cells are filled in by
// Calculate.
type Subtotal struct {
	Text     string `json:"text"`
	ID       string `json:"id,omitempty"`
	Visible  bool   `json:"visible"`
	Heading  bool   `json:"heading,omitempty"`
	Bordered bool   `json:"bordered,omitempty"`
	Cells    []Cell `json:"cells"`
}

// Computed derives its cells from already-resolved nodes. The function runs
// after every sibling row and subtotal at its level has been resolved.
type Computed struct {
	Text     string               `json:"text"`
	ID       string               `json:"id,omitempty"`
	Visible  bool                 `json:"visible"`
	Heading  bool                 `json:"heading,omitempty"`
	Bordered bool                 `json:"bordered,omitempty"`
	Fn       func(*Report) []Cell `json:"-"`
	Cells    []Cell               `json:"cells"`
}

// Spacer is a blank separator line.
type Spacer struct{}

func (*Section) node()  {}
func (*Row) node()      {}
func (*Subtotal) node() {}
func (*Computed) node() {}
func (*Spacer) node()   {}

// Report is a calculated or calculatable report tree.
type Report struct {
	Title    string   `json:"title"`
	Columns  []string `json:"columns"`
	Warnings []string `json:"warnings,omitempty"`
	Nodes    []Node   `json:"-"`
}

// Calculate resolves every Subtotal and Computed node in a single
// deterministic depth-first pass: children before parents, and within each
// sibling list subtotals before computed rows.
func (r *Report) Calculate() {
	r.calculate(r.Nodes)
}

func (r *Report) calculate(nodes []Node) {
	// Children first, so subtotals and computed rows see resolved subtrees.
	for _, n := range nodes {
		if section, ok := n.(*Section); ok {
			r.calculate(section.Nodes)
		}
	}

	for _, n := range nodes {
		if subtotal, ok := n.(*Subtotal); ok {
			subtotal.Cells = sumRows(nodes, len(r.Columns))
		}
	}

	for _, n := range nodes {
		if computed, ok := n.(*Computed); ok && computed.Fn != nil {
			computed.Cells = computed.Fn(r)
		}
	}
}

// sumRows sums the Row entries of a sibling list, column by column. Blank
// cells count as zero.
func sumRows(nodes []Node, columns int) []Cell {
	sums := make([]int64, columns)
	for _, n := range nodes {
		row, ok := n.(*Row)
		if !ok {
			continue
		}
		for i, cell := range row.Cells {
			if i < columns && !cell.Blank {
				sums[i] += cell.Quantity
			}
		}
	}

	cells := make([]Cell, columns)
	for i, sum := range sums {
		cells[i] = Value(sum)
	}
	return cells
}

// ByID returns the first node carrying the given id, searching depth-first.
func (r *Report) ByID(id string) (Node, bool) {
	return findByID(r.Nodes, id)
}

func findByID(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		switch node := n.(type) {
		case *Section:
			if node.ID == id {
				return node, true
			}
			if found, ok := findByID(node.Nodes, id); ok {
				return found, true
			}
		case *Row:
			if node.ID == id {
				return node, true
			}
		case *Subtotal:
			if node.ID == id {
				return node, true
			}
		case *Computed:
			if node.ID == id {
				return node, true
			}
		}
	}
	return nil, false
}

// CellsForID returns the resolved cells of the row, subtotal or computed node
// carrying the given id.
func (r *Report) CellsForID(id string) ([]Cell, bool) {
	node, ok := r.ByID(id)
	if !ok {
		return nil, false
	}
	switch node := node.(type) {
	case *Row:
		return node.Cells, true
	case *Subtotal:
		return node.Cells, true
	case *Computed:
		return node.Cells, true
	}
	return nil, false
}

// AutoHide removes rows and sections that are flagged auto-hide and whose
// cells are all zero or blank.
func (r *Report) AutoHide() {
	r.Nodes = autoHide(r.Nodes)
}

func autoHide(nodes []Node) []Node {
	out := nodes[:0]
	for _, n := range nodes {
		switch node := n.(type) {
		case *Section:
			node.Nodes = autoHide(node.Nodes)
			if node.AutoHide && !hasVisibleContent(node.Nodes) {
				continue
			}
		case *Row:
			if node.AutoHide && allZero(node.Cells) {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func hasVisibleContent(nodes []Node) bool {
	for _, n := range nodes {
		switch node := n.(type) {
		case *Section, *Computed:
			return true
		case *Row:
			if !allZero(node.Cells) {
				return true
			}
		case *Subtotal:
			if !allZero(node.Cells) {
				return true
			}
		}
	}
	return false
}

func allZero(cells []Cell) bool {
	for _, c := range cells {
		if !c.Blank && c.Quantity != 0 {
			return false
		}
	}
	return true
}

// nodeEnvelope tags a node with its variant for JSON serialisation.
type nodeEnvelope struct {
	Type     string    `json:"type"`
	Section  *Section  `json:"section,omitempty"`
	Row      *Row      `json:"row,omitempty"`
	Subtotal *Subtotal `json:"subtotal,omitempty"`
	Computed *Computed `json:"computed,omitempty"`
	Nodes    []Node    `json:"nodes,omitempty"`
}

func envelopes(nodes []Node) []nodeEnvelope {
	out := make([]nodeEnvelope, 0, len(nodes))
	for _, n := range nodes {
		switch node := n.(type) {
		case *Section:
			out = append(out, nodeEnvelope{Type: "section", Section: node, Nodes: node.Nodes})
		case *Row:
			out = append(out, nodeEnvelope{Type: "row", Row: node})
		case *Subtotal:
			out = append(out, nodeEnvelope{Type: "subtotal", Subtotal: node})
		case *Computed:
			out = append(out, nodeEnvelope{Type: "computed", Computed: node})
		case *Spacer:
			out = append(out, nodeEnvelope{Type: "spacer"})
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler, tagging each node with its variant.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title    string         `json:"title"`
		Columns  []string       `json:"columns"`
		Warnings []string       `json:"warnings,omitempty"`
		Nodes    []nodeEnvelope `json:"nodes"`
	}{r.Title, r.Columns, r.Warnings, envelopes(r.Nodes)})
}

// MarshalJSON implements json.Marshaler for nested sections.
func (e nodeEnvelope) MarshalJSON() ([]byte, error) {
	type bare nodeEnvelope
	v := bare(e)
	if e.Section != nil {
		// Serialize child nodes as envelopes too.
		return json.Marshal(struct {
			Type     string         `json:"type"`
			Section  *Section       `json:"section"`
			Children []nodeEnvelope `json:"children,omitempty"`
		}{e.Type, e.Section, envelopes(e.Nodes)})
	}
	v.Nodes = nil
	return json.Marshal(v)
}
