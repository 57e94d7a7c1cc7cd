package invocation

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Signature renders the invocation as Class.method(arg, arg). Arguments
// whose declared parameter is marked Redact render as |:name:|.
func (id Identity) Signature(params []harness.Param) string {
	var b strings.Builder
	b.WriteString(simpleName(id.Class))
	b.WriteByte('.')
	b.WriteString(id.Method)
	b.WriteByte('(')
	for i, a := range id.args {
		if i > 0 {
			b.WriteString(", ")
		}
		if i < len(params) && params[i].Redact {
			b.WriteString("|:")
			b.WriteString(params[i].Name)
			b.WriteString(":|")
			continue
		}
		fmt.Fprintf(&b, "%v", a)
	}
	b.WriteByte(')')
	return b.String()
}

// Signature renders the invocation recorded by r, honouring the
// method's redacted parameters.
func Signature(r *harness.Result) string {
	var params []harness.Param
	if r != nil && r.Method != nil {
		params = r.Method.Params
	}
	return FromResult(r).Signature(params)
}
