package lodalang

import (
	"fmt"
	"io"
	"strings"

	"github.com/reusee/loda/bigs"
)

func (i *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(i.Op.String())
	if i.Target.Kind != NoOperand {
		sb.WriteString(" ")
		sb.WriteString(i.Target.String())
	}
	if i.Source.Kind != NoOperand {
		sb.WriteString(",")
		sb.WriteString(i.Source.String())
	}
	return sb.String()
}

func (l *Loop) String() string {
	if l.Length.Kind == Constant && l.Length.Value.Equal(bigs.One) {
		return "lpb " + l.Counter.String()
	}
	return "lpb " + l.Counter.String() + "," + l.Length.String()
}

func (p *Program) String() string {
	var sb strings.Builder
	p.Format(&sb)
	return sb.String()
}

// Format writes canonical assembly text, two spaces of indentation per loop level.
func (p *Program) Format(w io.Writer) error {
	if p.ID > 0 {
		if _, err := fmt.Fprintf(w, "; A%06d: %s\n", p.ID, p.Name); err != nil {
			return err
		}
	}
	if p.Offset != 0 {
		if _, err := fmt.Fprintf(w, "#offset %d\n", p.Offset); err != nil {
			return err
		}
	}
	return formatNodes(w, p.Body, 0)
}

func formatNodes(w io.Writer, nodes []Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		switch node := node.(type) {
		case *Instruction:
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, node); err != nil {
				return err
			}
		case *Loop:
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, node.String()); err != nil {
				return err
			}
			if err := formatNodes(w, node.Body, depth+1); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%slpe\n", indent); err != nil {
				return err
			}
		}
	}
	return nil
}
