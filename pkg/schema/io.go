package schema

import (
	"encoding/json"
	"fmt"
)

// Parse parses a JSON Avro-style schema document into a Schema tree.
// Named records may be referenced by name from anywhere nested underneath
// their own definition, which is how recursive schemas (spec §8 scenario 5)
// are expressed on the wire: the reference resolves to the very same
// *RecordSchema pointer, giving the builder a real Go pointer cycle to key
// its references table on.
func Parse(data []byte) (Schema, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: invalid JSON: %w", err)
	}
	p := &jsonParser{named: make(map[string]*RecordSchema)}
	return p.parse(raw)
}

type jsonParser struct {
	named map[string]*RecordSchema
}

func (p *jsonParser) parse(raw json.RawMessage) (Schema, error) {
	trimmed := trimSpaceJSON(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("schema: empty schema")
	}

	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		return p.parseNamed(name)
	case '[':
		var branches []json.RawMessage
		if err := json.Unmarshal(raw, &branches); err != nil {
			return nil, err
		}
		out := make([]Schema, len(branches))
		for i, b := range branches {
			s, err := p.parse(b)
			if err != nil {
				return nil, fmt.Errorf("schema: union branch %d: %w", i, err)
			}
			out[i] = s
		}
		return NewUnion(out...), nil
	case '{':
		return p.parseObject(raw)
	default:
		return nil, fmt.Errorf("schema: unexpected schema token %q", trimmed[:1])
	}
}

func (p *jsonParser) parseNamed(name string) (Schema, error) {
	switch name {
	case "null":
		return NewNull(), nil
	case "boolean":
		return NewBoolean(), nil
	case "int":
		return NewInt(), nil
	case "long":
		return NewLong(nil), nil
	case "float":
		return NewFloat(), nil
	case "double":
		return NewDouble(), nil
	case "bytes":
		return NewBytes(nil), nil
	case "string":
		return NewString(nil), nil
	}
	if rec, ok := p.named[name]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("schema: unknown named type %q", name)
}

type jsonNode struct {
	Type        json.RawMessage   `json:"type"`
	Name        string            `json:"name"`
	Size        int               `json:"size"`
	Symbols     []string          `json:"symbols"`
	Items       json.RawMessage   `json:"items"`
	Values      json.RawMessage   `json:"values"`
	Fields      []jsonField       `json:"fields"`
	LogicalType string            `json:"logicalType"`
	Precision   int               `json:"precision"`
	Scale       int               `json:"scale"`
}

type jsonField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

func logicalTypeFromString(name string, precision, scale int) (*LogicalType, error) {
	switch name {
	case "":
		return nil, nil
	case "decimal":
		return &LogicalType{Kind: LogicalDecimal, Precision: precision, Scale: scale}, nil
	case "duration":
		return &LogicalType{Kind: LogicalDuration}, nil
	case "timestamp-millis":
		return &LogicalType{Kind: LogicalTimestampMillis}, nil
	case "timestamp-micros":
		return &LogicalType{Kind: LogicalTimestampMicros}, nil
	case "uuid":
		return &LogicalType{Kind: LogicalUUID}, nil
	default:
		return nil, fmt.Errorf("schema: unknown logical type %q", name)
	}
}

func (p *jsonParser) parseObject(raw json.RawMessage) (Schema, error) {
	var node jsonNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}

	logical, err := logicalTypeFromString(node.LogicalType, node.Precision, node.Scale)
	if err != nil {
		return nil, err
	}

	var typeName string
	if err := json.Unmarshal(node.Type, &typeName); err != nil {
		// "type" can itself be a nested schema (e.g. {"type": {"type": "array", ...}})
		return p.parse(node.Type)
	}

	switch typeName {
	case "null":
		return NewNull(), nil
	case "boolean":
		return NewBoolean(), nil
	case "int":
		return NewInt(), nil
	case "long":
		return NewLong(logical), nil
	case "float":
		return NewFloat(), nil
	case "double":
		return NewDouble(), nil
	case "bytes":
		return NewBytes(logical), nil
	case "string":
		return NewString(logical), nil
	case "fixed":
		if node.Name == "" {
			return nil, fmt.Errorf("schema: fixed type missing name")
		}
		return NewFixed(node.Name, node.Size, logical), nil
	case "enum":
		if node.Name == "" {
			return nil, fmt.Errorf("schema: enum type missing name")
		}
		return NewEnum(node.Name, node.Symbols), nil
	case "array":
		item, err := p.parse(node.Items)
		if err != nil {
			return nil, fmt.Errorf("schema: array items: %w", err)
		}
		return NewArray(item), nil
	case "map":
		val, err := p.parse(node.Values)
		if err != nil {
			return nil, fmt.Errorf("schema: map values: %w", err)
		}
		return NewMap(val), nil
	case "record":
		if node.Name == "" {
			return nil, fmt.Errorf("schema: record type missing name")
		}
		rec := NewRecord(node.Name)
		p.named[node.Name] = rec // register before parsing fields: enables self-reference
		fields := make([]Field, len(node.Fields))
		for i, jf := range node.Fields {
			ft, err := p.parse(jf.Type)
			if err != nil {
				return nil, fmt.Errorf("schema: record %s field %s: %w", node.Name, jf.Name, err)
			}
			fields[i] = Field{Name: jf.Name, Type: ft}
		}
		rec.SetFields(fields)
		return rec, nil
	default:
		return nil, fmt.Errorf("schema: unknown schema type %q", typeName)
	}
}

func trimSpaceJSON(raw json.RawMessage) json.RawMessage {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t' || raw[i] == '\n' || raw[i] == '\r') {
		i++
	}
	return raw[i:]
}

// Marshal renders a Schema tree back to its JSON Avro-style form. Records
// already visited (by pointer identity) are emitted as a bare name
// reference on subsequent visits, mirroring how Parse resolves them.
func Marshal(s Schema) ([]byte, error) {
	m := &jsonMarshaler{seen: make(map[*RecordSchema]bool)}
	v, err := m.marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

type jsonMarshaler struct {
	seen map[*RecordSchema]bool
}

func logicalTypeString(lt *LogicalType) (string, int, int) {
	if lt == nil {
		return "", 0, 0
	}
	return lt.Kind.String(), lt.Precision, lt.Scale
}

func (m *jsonMarshaler) marshal(s Schema) (any, error) {
	switch t := s.(type) {
	case *NullSchema:
		return "null", nil
	case *BooleanSchema:
		return "boolean", nil
	case *IntSchema:
		return "int", nil
	case *LongSchema:
		return m.withLogical("long", t.Logical()), nil
	case *FloatSchema:
		return "float", nil
	case *DoubleSchema:
		return "double", nil
	case *BytesSchema:
		return m.withLogical("bytes", t.Logical()), nil
	case *StringSchema:
		return m.withLogical("string", t.Logical()), nil
	case *FixedSchema:
		obj := map[string]any{"type": "fixed", "name": t.Name, "size": t.Size}
		m.addLogical(obj, t.Logical())
		return obj, nil
	case *EnumSchema:
		return map[string]any{"type": "enum", "name": t.Name, "symbols": t.Symbols}, nil
	case *ArraySchema:
		item, err := m.marshal(t.Item)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": item}, nil
	case *MapSchema:
		val, err := m.marshal(t.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "map", "values": val}, nil
	case *RecordSchema:
		if m.seen[t] {
			return t.Name, nil
		}
		m.seen[t] = true
		fields := make([]map[string]any, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := m.marshal(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = map[string]any{"name": f.Name, "type": ft}
		}
		return map[string]any{"type": "record", "name": t.Name, "fields": fields}, nil
	case *UnionSchema:
		branches := make([]any, len(t.Branches))
		for i, b := range t.Branches {
			v, err := m.marshal(b)
			if err != nil {
				return nil, err
			}
			branches[i] = v
		}
		return branches, nil
	default:
		return nil, fmt.Errorf("schema: unmarshalable schema node %T", s)
	}
}

func (m *jsonMarshaler) withLogical(typeName string, lt *LogicalType) any {
	if lt == nil {
		return typeName
	}
	obj := map[string]any{"type": typeName}
	m.addLogical(obj, lt)
	return obj
}

func (m *jsonMarshaler) addLogical(obj map[string]any, lt *LogicalType) {
	if lt == nil {
		return
	}
	obj["logicalType"] = lt.Kind.String()
	if lt.Kind == LogicalDecimal {
		obj["precision"] = lt.Precision
		obj["scale"] = lt.Scale
	}
}
