package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	goyaml "github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"gopkg.in/yaml.v3"
)

// Decoder turns file contents into a nested Go value.
type Decoder interface {
	Decode(data []byte) (any, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte) (any, error)

func (f DecoderFunc) Decode(data []byte) (any, error) {
	return f(data)
}

var (
	// JSONDecoder decodes a single JSON document, keeping numbers exact.
	JSONDecoder Decoder = DecoderFunc(decodeJSON)

	// YAMLDecoder decodes the first YAML document with gopkg.in/yaml.v3.
	YAMLDecoder Decoder = DecoderFunc(decodeYAML)

	// StrictYAMLDecoder decodes YAML with github.com/goccy/go-yaml. It
	// rejects duplicate mapping keys and multi-document streams.
	StrictYAMLDecoder Decoder = DecoderFunc(decodeStrictYAML)
)

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to parse JSON: unexpected data after top-level value")
	}
	return v, nil
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return v, nil
}

func decodeStrictYAML(data []byte) (any, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Docs) > 1 {
		return nil, errors.New("failed to parse YAML: more than one document")
	}
	for _, doc := range file.Docs {
		v := &duplicateKeys{}
		ast.Walk(v, doc)
		if v.err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", v.err)
		}
	}

	dec := goyaml.NewDecoder(bytes.NewReader(data), goyaml.DisallowDuplicateKey())

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to parse YAML: more than one document")
	}
	return v, nil
}

// duplicateKeys finds the first mapping that repeats a key. The decoder's
// own DisallowDuplicateKey is not applied when decoding into any.
type duplicateKeys struct {
	err error
}

func (v *duplicateKeys) Visit(n ast.Node) ast.Visitor {
	if v.err != nil {
		return nil
	}
	m, ok := n.(*ast.MappingNode)
	if !ok {
		return v
	}
	seen := make(map[string]int, len(m.Values))
	for _, mv := range m.Values {
		if mv == nil || mv.Key == nil {
			continue
		}
		key := keyIdentity(mv.Key)
		line := mv.Key.GetToken().Position.Line
		if prev, dup := seen[key]; dup {
			v.err = fmt.Errorf("line %d: mapping key %s already defined at line %d", line, mv.Key.String(), prev)
			return nil
		}
		seen[key] = line
	}
	return v
}

// keyIdentity distinguishes keys by type and value, so a and "a" match
// but 1 and "1" do not.
func keyIdentity(k ast.MapKeyNode) string {
	if s, ok := k.(ast.ScalarNode); ok {
		return fmt.Sprintf("%T:%v", s.GetValue(), s.GetValue())
	}
	return k.String()
}
