package golang

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/opgen/ir"
)

// Emitter turns operation descriptors into Go function source.
type Emitter struct {
	cfg Config
}

// NewEmitter creates an Emitter, applying defaults to cfg.
func NewEmitter(cfg Config) *Emitter {
	return &Emitter{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration, defaults applied.
func (e *Emitter) Config() Config {
	return e.cfg
}

// Build emits the function for one operation. Any failure is reported as an
// *UnsupportedError wrapping the cause (ErrUnknownType, ErrUnsupportedParameter).
func (e *Emitter) Build(op ir.OperationDescriptor) (Function, error) {
	fn, err := e.build(op)
	if err != nil {
		return Function{}, &UnsupportedError{Nickname: op.Nickname, Err: err}
	}
	return fn, nil
}

// param is one required parameter with everything the body needs resolved.
type param struct {
	ir.ParameterDescriptor
	ident  string // local identifier
	decl   string // Go declaration type
	setter string // option setter function, e.g. "ImageInput"
}

func (e *Emitter) build(op ir.OperationDescriptor) (Function, error) {
	name := PascalCase(op.Nickname)
	if name == "" {
		return Function{}, errors.Newf("empty nickname for class %s", op.Class)
	}
	name = SafeIdent(name)

	rt := e.cfg.Runtime
	primary := e.cfg.PrimaryType
	if e.cfg.FreeFunctions {
		primary = ""
	}
	c := ClassifyRequired(op, primary)

	params, err := e.resolve(c)
	if err != nil {
		return Function{}, err
	}

	var buf bytes.Buffer

	// Doc comment
	fmt.Fprintf(&buf, "// %s executes the '%s' operation\n", name, op.Nickname)
	fmt.Fprintf(&buf, "// (see %s at %s)\n", op.Nickname, rt.DocURL)

	// Signature
	buf.WriteString("func ")
	if c.ReceiverIndex >= 0 {
		fmt.Fprintf(&buf, "(%s %s) ", rt.ReceiverName, params[c.ReceiverIndex].decl)
	}
	var args []string
	for _, i := range c.ArgIndexes() {
		p := params[i]
		arg := p.ident + " "
		if p.IsOutput() {
			arg += "*"
		}
		arg += p.decl
		args = append(args, arg)
	}
	args = append(args, "opts ..."+rt.OptionFuncType)
	fmt.Fprintf(&buf, "%s(%s)", name, strings.Join(args, ", "))
	if c.ResultIndex >= 0 {
		buf.WriteString(" " + params[c.ResultIndex].decl)
	}
	buf.WriteString(" {\n")

	// Result variable
	if c.ResultIndex >= 0 {
		result := params[c.ResultIndex]
		fmt.Fprintf(&buf, "\tvar %s %s\n", result.ident, result.decl)
	}

	// Option list covers every required parameter, receiver and result included.
	fmt.Fprintf(&buf, "\toptions := %s(opts...).%s(\n", rt.OptionsConstructor, rt.OptionsMethod)
	for i, p := range params {
		expr := p.ident
		switch {
		case i == c.ReceiverIndex:
			expr = rt.ReceiverName
		case i == c.ResultIndex:
			expr = "&" + p.ident
		case p.Enum:
			expr = "int(" + p.ident + ")"
		}
		fmt.Fprintf(&buf, "\t\t%s(%q, %s),\n", p.setter, p.Name, expr)
	}
	buf.WriteString("\t)\n")

	fmt.Fprintf(&buf, "\t%s(%q, options)\n", rt.Dispatcher, op.Nickname)

	if c.ResultIndex >= 0 {
		result := params[c.ResultIndex]
		if e.isPrimaryDecl(result.decl) {
			if src := e.historySource(c, params); src != "" {
				fmt.Fprintf(&buf, "\t%s.%s(%s.%s)\n", result.ident, rt.CopyHistoryMethod, src, rt.HistoryField)
			}
			fmt.Fprintf(&buf, "\t%s.%s(%q, options)\n", result.ident, rt.LogCallMethod, op.Nickname)
		}
		fmt.Fprintf(&buf, "\treturn %s\n", result.ident)
	}
	buf.WriteString("}")

	var setters []string
	for _, p := range params {
		if !slices.Contains(setters, p.setter) {
			setters = append(setters, p.setter)
		}
	}
	slices.Sort(setters)

	return Function{
		Nickname: op.Nickname,
		Name:     name,
		Receiver: c.ReceiverIndex >= 0,
		Setters:  setters,
		Text:     buf.String(),
	}, nil
}

// resolve maps every required parameter to its identifier, declaration type
// and option setter.
func (e *Emitter) resolve(c Classification) ([]param, error) {
	rt := e.cfg.Runtime

	taken := map[string]bool{"opts": true, "options": true}
	if c.ReceiverIndex >= 0 {
		taken[rt.ReceiverName] = true
	}

	params := make([]param, len(c.Required))
	for i, p := range c.Required {
		decl, err := e.cfg.Types.DeclType(p.Type)
		if err != nil {
			return nil, err
		}
		suffix, err := e.cfg.Types.OptionSetterSuffix(p)
		if err != nil {
			return nil, err
		}
		if p.Enum && p.IsOutput() {
			return nil, unsupportedParameter("enum output parameter %q", p.Name)
		}

		setter := suffix + "Input"
		if p.IsOutput() {
			setter = suffix + "Output"
		}

		ident := rt.ReceiverName
		if i != c.ReceiverIndex {
			ident = SafeIdent(CamelCase(p.Name))
			for taken[ident] {
				ident += "_"
			}
			taken[ident] = true
		}

		params[i] = param{ParameterDescriptor: p, ident: ident, decl: decl, setter: setter}
	}
	return params, nil
}

// isPrimaryDecl reports whether decl is the declaration type of the primary type.
func (e *Emitter) isPrimaryDecl(decl string) bool {
	primary, err := e.cfg.Types.DeclType(e.cfg.PrimaryType)
	return err == nil && decl == primary
}

// historySource returns the identifier whose call history the result
// inherits: the receiver, else the first other required input of the
// primary type. Empty if there is none.
func (e *Emitter) historySource(c Classification, params []param) string {
	if c.ReceiverIndex >= 0 {
		return e.cfg.Runtime.ReceiverName
	}
	for i, p := range params {
		if i != c.ResultIndex && p.IsInput() && p.Type == e.cfg.PrimaryType {
			return p.ident
		}
	}
	return ""
}
