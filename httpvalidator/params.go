package httpvalidator

import (
	"errors"
	"fmt"
	"net/textproto"
	"strings"

	"github.com/erraggy/oasguard/casting"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/paths"
	"github.com/erraggy/oasguard/spec"
	"github.com/erraggy/oasguard/styles"
)

// paramKey identifies a parameter declaration by name and location.
type paramKey struct {
	name string
	in   string
}

// validateParameters runs the parameter pipeline over the route's
// declarations: operation-level first, then path-item-level. The first
// declaration of each (name, location) shadows later ones, whether or not
// it validates.
func (v *Validator) validateParameters(req *Request, route *paths.Route, result *Result) {
	seen := make(map[paramKey]bool)
	v.processDeclarations(req, route.Operation.Child("parameters"), seen, result)
	v.processDeclarations(req, route.PathItem.Child("parameters"), seen, result)
}

// processDeclarations walks one parameters list. A failed declaration is
// recorded on the result and processing continues with the next one.
func (v *Validator) processDeclarations(req *Request, params spec.Node, seen map[paramKey]bool, result *Result) {
	for i := 0; i < params.Len(); i++ {
		param := params.At(i)
		name := param.StrOr("name", "")
		in := param.StrOr("in", "")

		key := paramKey{name: name, in: in}
		if seen[key] {
			continue
		}
		seen[key] = true

		if param.BoolOr("deprecated", false) {
			v.notice(result, Notice{
				Name:    name,
				In:      in,
				Message: fmt.Sprintf("parameter %q in %s is deprecated", name, in),
			})
		}

		value, ok, err := v.resolveParameter(req, param, name, in)
		if err != nil {
			setNameIn(err, name, in)
			result.addError(err)
			continue
		}
		if !ok {
			continue
		}
		result.setParam(in, name, value)
	}
}

// resolveParameter takes one declaration through fetch, deserialize, cast,
// and unmarshal. The boolean reports whether a value was produced; an
// optional absent parameter with no default yields (nil, false, nil).
func (v *Validator) resolveParameter(req *Request, param spec.Node, name, in string) (any, bool, error) {
	raw, present := fetchRaw(req, param, name, in)
	if !present {
		if param.BoolOr("required", false) {
			return nil, false, &oaserrors.MissingParameterError{Name: name, In: in}
		}
		schema := param.Child("schema")
		if def, ok := schema.Get("default"); ok {
			// Defaults are already structural; only unmarshal applies.
			value, err := v.unm.Unmarshal(schema, def)
			if err != nil {
				return nil, false, err
			}
			return value, true, nil
		}
		return nil, false, nil
	}

	var (
		value  any
		schema spec.Node
		err    error
	)
	if content := param.Child("content"); content.Exists() && content.Len() > 0 {
		// Content parameters carry exactly one media type; its
		// deserializer and schema replace the style machinery.
		mt := content.Keys()[0]
		value, err = v.media.Deserialize(mt, []byte(raw.Value))
		if err != nil {
			return nil, false, err
		}
		schema = content.Child(mt).Child("schema")
	} else {
		value, err = v.styles.Deserialize(param, raw)
		if err != nil {
			return nil, false, err
		}
		schema = param.Child("schema")
	}

	value, err = casting.Cast(schema, value)
	if err != nil {
		return nil, false, err
	}

	value, err = v.unm.Unmarshal(schema, value)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// fetchRaw reads the raw occurrence(s) of a parameter from its location
// store. Header names are matched canonically. The boolean reports
// presence; deepObject parameters are present when any bracketed key
// carries their name.
func fetchRaw(req *Request, param spec.Node, name, in string) (styles.RawValue, bool) {
	store := req.Params.byLocation(in)
	if store == nil {
		return styles.RawValue{}, false
	}

	lookup := name
	if in == "header" {
		lookup = textproto.CanonicalMIMEHeaderKey(name)
	}

	if styles.Style(param) == styles.StyleDeepObject {
		prefix := name + "["
		fields := make(map[string][]string)
		for key, vs := range store {
			if strings.HasPrefix(key, prefix) {
				fields[key] = vs
			}
		}
		return styles.RawValue{Fields: fields}, len(fields) > 0
	}

	if !store.Has(lookup) {
		return styles.RawValue{}, false
	}

	if styles.AsList(param) && styles.Explode(param) {
		return styles.RawValue{
			Values: store.GetAll(lookup),
			IsList: true,
		}, true
	}
	return styles.RawValue{Value: store.Get(lookup)}, true
}

// setNameIn stamps a parameter's name and location onto stage errors from
// the location-agnostic collaborators, leaving already-set fields alone.
func setNameIn(err error, name, in string) {
	var (
		dserr *oaserrors.DeserializeError
		cerr  *oaserrors.CastError
		scerr *oaserrors.SchemaError
		uerr  *oaserrors.UnmarshalError
	)
	switch {
	case errors.As(err, &dserr):
		if dserr.Name == "" {
			dserr.Name = name
		}
		if dserr.In == "" {
			dserr.In = in
		}
	case errors.As(err, &cerr):
		if cerr.Name == "" {
			cerr.Name = name
		}
		if cerr.In == "" {
			cerr.In = in
		}
	case errors.As(err, &scerr):
		if scerr.Name == "" {
			scerr.Name = name
		}
		if scerr.In == "" {
			scerr.In = in
		}
	case errors.As(err, &uerr):
		if uerr.Name == "" {
			uerr.Name = name
		}
		if uerr.In == "" {
			uerr.In = in
		}
	}
}
