package storefront

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/llehouerou/go-storefront-client/internal/reflectutil"
	"github.com/llehouerou/go-storefront-client/internal/tagparser"
)

// writeArgumentValue writes v as a minified GraphQL value literal to buf.
//
// Strings and IDs render as quoted strings, structs as input objects keyed
// by their json tags (honoring omitempty), slices as lists. Nil pointers
// render as null.
func writeArgumentValue(buf *bytes.Buffer, v any) error {
	if v == nil {
		_, _ = io.WriteString(buf, "null")
		return nil
	}
	return writeReflectedValue(buf, reflect.ValueOf(v))
}

func writeReflectedValue(buf *bytes.Buffer, v reflect.Value) error {
	if reflectutil.IsNilValue(v) {
		_, _ = io.WriteString(buf, "null")
		return nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return writeReflectedValue(buf, v.Elem())
	case reflect.String:
		_, _ = io.WriteString(buf, strconv.Quote(v.String()))
	case reflect.Bool:
		_, _ = io.WriteString(buf, strconv.FormatBool(v.Bool()))
	case reflect.Float32, reflect.Float64:
		_, _ = io.WriteString(buf, strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits()))
	case reflect.Slice, reflect.Array:
		return writeListValue(buf, v)
	case reflect.Struct:
		return writeInputObject(buf, v)
	default:
		if reflectutil.IsIntegerKind(v.Kind()) {
			return writeIntegerValue(buf, v)
		}
		return fmt.Errorf("unsupported argument type %s", v.Type())
	}
	return nil
}

func writeIntegerValue(buf *bytes.Buffer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, _ = io.WriteString(buf, strconv.FormatUint(v.Uint(), 10))
	default:
		_, _ = io.WriteString(buf, strconv.FormatInt(v.Int(), 10))
	}
	return nil
}

func writeListValue(buf *bytes.Buffer, v reflect.Value) error {
	buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i != 0 {
			buf.WriteByte(',')
		}
		if err := writeReflectedValue(buf, v.Index(i)); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// writeInputObject renders a struct as a GraphQL input object. Field names
// come from json tags so input types serialize the same way here and in
// tests that marshal them directly.
func writeInputObject(buf *bytes.Buffer, v reflect.Value) error {
	t := v.Type()
	buf.WriteByte('{')
	iter := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		tag := tagparser.ParseJSONTag(f.Tag.Get("json"))
		if tag.Skip {
			continue
		}
		fieldVal := v.Field(i)
		if tag.OmitEmpty && reflectutil.IsEmptyValue(fieldVal) {
			continue
		}
		if iter != 0 {
			buf.WriteByte(',')
		}
		iter++
		_, _ = io.WriteString(buf, tag.Name)
		buf.WriteByte(':')
		if err := writeReflectedValue(buf, fieldVal); err != nil {
			return fmt.Errorf(
				"failed to write input field `%s`: %w",
				f.Name,
				err,
			)
		}
	}
	buf.WriteByte('}')
	return nil
}
