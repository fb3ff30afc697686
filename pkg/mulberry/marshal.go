package mulberry

import (
	"fmt"
	"reflect"

	"github.com/blockberries/mulberry/pkg/builder"
	"github.com/blockberries/mulberry/pkg/schema"
)

// WriteCodec is a schema compiled against one target type for encoding,
// the write-side counterpart to Codec. See pkg/builder/writer.go for the
// limitations of the underlying minimal serializer, most notably that a
// union with more than one non-null branch always writes its first branch.
type WriteCodec struct {
	write builder.WriteFunc
	typ   reflect.Type
}

// CompileWriter builds a WriteCodec that encodes values of target's type
// against s. target is a pointer to a value of the desired shape; only its
// type is inspected.
func CompileWriter(s schema.Schema, target any) (*WriteCodec, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("%w: got %T", ErrNotPointer, target)
	}
	if rv.IsNil() {
		return nil, ErrNilPointer
	}
	t := rv.Type().Elem()

	write, err := builder.BuildWriter(s, t)
	if err != nil {
		return nil, &BuildError{Type: t.String(), Message: "compiling writer", Cause: err}
	}
	return &WriteCodec{write: write, typ: t}, nil
}

// Marshal encodes v, which must be of the WriteCodec's compiled type.
func (c *WriteCodec) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() != c.typ {
		return nil, fmt.Errorf("%w: have %s, compiled for %s", ErrTypeMismatch, rv.Type(), c.typ)
	}
	enc := getEncoder()
	defer putEncoder(enc)
	if err := c.write(enc, rv); err != nil {
		return nil, &BuildError{Type: c.typ.String(), Message: "encoding value", Cause: err}
	}
	out := make([]byte, len(enc.Bytes()))
	copy(out, enc.Bytes())
	return out, nil
}

// Marshal is the one-shot convenience form: parse schemaJSON, compile a
// writer against v's type, and encode v. Prefer CompileWriter for any
// caller encoding the same schema/type pair more than once.
func Marshal(v any, schemaJSON []byte) ([]byte, error) {
	s, err := schema.Parse(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("mulberry: parsing schema: %w", err)
	}
	rv := reflect.ValueOf(v)
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	codec, err := CompileWriter(s, ptr.Interface())
	if err != nil {
		return nil, err
	}
	return codec.Marshal(v)
}
