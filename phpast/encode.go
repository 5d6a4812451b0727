package phpast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Output formats understood by Encode
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned by Encode for an unrecognized format name
var ErrUnknownFormat = errors.New("unknown output format")

// Encode writes v to w in the given format
func Encode(w io.Writer, v Value, format string, opts DumpOptions) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Dump(v, opts)+"\n")
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(jsonValue{v}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlValue(v)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

type jsonValue struct {
	v Value
}

func (j jsonValue) MarshalJSON() ([]byte, error) {
	if IsAbsent(j.v) {
		return []byte("null"), nil
	}
	switch x := j.v.(type) {
	case String:
		return json.Marshal(string(x))
	case Int:
		return []byte(strconv.FormatInt(int64(x), 10)), nil
	case Float:
		f := float64(x)
		switch {
		case math.IsNaN(f):
			return []byte(`"NAN"`), nil
		case math.IsInf(f, 1):
			return []byte(`"INF"`), nil
		case math.IsInf(f, -1):
			return []byte(`"-INF"`), nil
		}
		return json.Marshal(f)
	case *Node:
		return x.MarshalJSON()
	}
	return nil, fmt.Errorf("unexpected value %T", j.v)
}

// MarshalJSON encodes the node as an object with kind, flags, lineno, the
// declaration attributes when present and children as an array (lists) or
// an object keeping slot order (structured kinds)
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	kind, _ := json.Marshal(n.Kind.String())
	fmt.Fprintf(&buf, `{"kind":%s,"flags":%d,"lineno":%d`, kind, int(n.Flags), n.Lineno)
	if n.decl != nil {
		name, _ := json.Marshal(n.decl.Name)
		fmt.Fprintf(&buf, `,"name":%s,"endLineno":%d`, name, n.decl.EndLineno)
		if n.decl.DocComment != "" {
			doc, _ := json.Marshal(n.decl.DocComment)
			fmt.Fprintf(&buf, `,"docComment":%s`, doc)
		}
	}
	buf.WriteString(`,"children":`)
	opening, closing := byte('{'), byte('}')
	if n.IsList() {
		opening, closing = '[', ']'
	}
	buf.WriteByte(opening)
	for i, c := range n.children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !n.IsList() {
			key, _ := json.Marshal(c.Name)
			buf.Write(key)
			buf.WriteByte(':')
		}
		data, err := jsonValue{c.Value}.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(closing)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func yamlValue(v Value) *yaml.Node {
	if IsAbsent(v) {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch x := v.(type) {
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(x)}
	case Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(x), 10)}
	case Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(float64(x))}
	case *Node:
		return x.yamlNode()
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// MarshalYAML encodes the node as a mapping with the same layout as MarshalJSON
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.yamlNode(), nil
}

func (n *Node) yamlNode() *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	add("kind", scalar("!!str", n.Kind.String()))
	add("flags", scalar("!!int", strconv.Itoa(int(n.Flags))))
	add("lineno", scalar("!!int", strconv.Itoa(n.Lineno)))
	if n.decl != nil {
		add("name", scalar("!!str", n.decl.Name))
		add("endLineno", scalar("!!int", strconv.Itoa(n.decl.EndLineno)))
		if n.decl.DocComment != "" {
			add("docComment", scalar("!!str", n.decl.DocComment))
		}
	}
	var children *yaml.Node
	if n.IsList() {
		children = &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range n.children {
			children.Content = append(children.Content, yamlValue(c.Value))
		}
	} else {
		children = &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range n.children {
			children.Content = append(children.Content, scalar("!!str", c.Name), yamlValue(c.Value))
		}
	}
	add("children", children)
	return m
}

// yamlFloat spells the non-finite floats the way YAML 1.2 does
func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return formatFloat(f)
}
