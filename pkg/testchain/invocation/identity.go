// Package invocation identifies a single invocation of a test unit by its
// suite, context, declaring class, method name and actual arguments.
package invocation

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Identity is the immutable key of one invocation.
type Identity struct {
	Suite   string
	Context string
	Class   string
	Method  string
	args    []any
}

// New builds an Identity. The argument slice is copied.
func New(suite, context, class, method string, args ...any) Identity {
	return Identity{
		Suite:   suite,
		Context: context,
		Class:   class,
		Method:  method,
		args:    append([]any(nil), args...),
	}
}

// FromResult builds the Identity of the invocation r records.
func FromResult(r *harness.Result) Identity {
	var id Identity
	if r == nil {
		return id
	}
	if r.Context != nil {
		id.Context = r.Context.Name
		if r.Context.Suite != nil {
			id.Suite = r.Context.Suite.Name
		}
	}
	if r.Method != nil {
		id.Method = r.Method.Name
		if r.Method.Class != nil {
			id.Class = r.Method.Class.Name
		}
	}
	id.args = append([]any(nil), r.Args...)
	return id
}

// Args returns a copy of the invocation arguments.
func (id Identity) Args() []any {
	return append([]any(nil), id.args...)
}

// Equal reports whether the two identities name the same invocation.
// Arguments are compared element by element.
func (id Identity) Equal(other Identity) bool {
	if id.Suite != other.Suite || id.Context != other.Context ||
		id.Class != other.Class || id.Method != other.Method {
		return false
	}
	if len(id.args) != len(other.args) {
		return false
	}
	for i := range id.args {
		if !reflect.DeepEqual(id.args[i], other.args[i]) {
			return false
		}
	}
	return true
}

// Hash combines every field into a 64-bit hash. Equal identities always
// hash equally. Scalar arguments contribute their value, other arguments
// contribute only their type.
func (id Identity) Hash() uint64 {
	d := xxhash.New()
	for _, s := range []string{id.Suite, id.Context, id.Class, id.Method} {
		writeField(d, s)
	}
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(id.args)))
	_, _ = d.Write(n[:])
	for _, a := range id.args {
		writeField(d, argKey(a))
	}
	return d.Sum64()
}

// String renders the identity for diagnostics.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Suite, id.Context, id.Signature(nil))
}

func writeField(d *xxhash.Digest, s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	_, _ = d.Write(n[:])
	_, _ = d.WriteString(s)
}

func argKey(a any) string {
	if a == nil {
		return "nil"
	}
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Bool:
		return fmt.Sprintf("%T:%t", a, v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%T:%d", a, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fmt.Sprintf("%T:%d", a, v.Uint())
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) {
			// NaN never compares equal, so any stable value is fine.
			return fmt.Sprintf("%T:nan", a)
		}
		if f == 0 {
			f = 0 // fold -0
		}
		return fmt.Sprintf("%T:%b", a, f)
	case reflect.String:
		return fmt.Sprintf("%T:%s", a, v.String())
	default:
		return reflect.TypeOf(a).String()
	}
}

// simpleName returns the last dotted or slashed segment of a class name.
func simpleName(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}
