package httpvalidator

import (
	"github.com/erraggy/oasguard/casting"
	"github.com/erraggy/oasguard/media"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/paths"
)

// validateBody runs the body pipeline against the operation's requestBody
// declaration. A stage failure records one error and skips the remaining
// stages; parameters are never affected.
func (v *Validator) validateBody(req *Request, route *paths.Route, result *Result) {
	rb := route.Operation.Child("requestBody")
	if !rb.Exists() {
		return
	}

	if req.Body == nil {
		if rb.BoolOr("required", false) {
			result.addError(&oaserrors.MissingBodyError{})
		}
		return
	}
	result.BodyPresent = true

	mt, _, err := media.Select(req.ContentType, rb.Child("content"))
	if err != nil {
		result.addError(err)
		return
	}

	// The request's own content type goes to the deserializer so media
	// type parameters like charset reach the decoding layer.
	value, err := v.media.Deserialize(req.ContentType, req.Body)
	if err != nil {
		setNameIn(err, "", "body")
		result.addError(err)
		return
	}

	schema := mt.Child("schema")
	value, err = casting.Cast(schema, value)
	if err != nil {
		setNameIn(err, "", "body")
		result.addError(err)
		return
	}

	if !schema.Exists() {
		result.Body = value
		return
	}

	value, err = v.unm.Unmarshal(schema, value)
	if err != nil {
		setNameIn(err, "", "body")
		result.addError(err)
		return
	}
	result.Body = value
}
