package httpvalidator_test

import (
	"fmt"
	"net/http/httptest"
	"strings"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/spec"
)

func ExampleNew() {
	specYAML := `
openapi: 3.1.0
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets:
    get:
      responses:
        "200":
          description: Success
`
	doc, err := spec.Parse([]byte(specYAML))
	if err != nil {
		fmt.Println("parse error:", err)
		return
	}

	v, err := httpvalidator.New(doc)
	if err != nil {
		fmt.Println("validator error:", err)
		return
	}

	req := &httpvalidator.Request{Method: "GET", Path: "/pets"}
	fmt.Println("valid:", v.Validate(req).Valid())
	// Output: valid: true
}

func ExampleValidator_Validate() {
	specYAML := `
openapi: 3.1.0
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
        - name: include
          in: query
          schema:
            type: string
            enum: [owner, vaccinations, all]
      responses:
        "200":
          description: Success
`
	doc, _ := spec.Parse([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	hr := httptest.NewRequest("GET", "/pets/123?include=owner", nil)
	req, _ := httpvalidator.NewRequest(hr)

	result := v.Validate(req)
	fmt.Println("valid:", result.Valid())
	fmt.Println("petId:", result.PathParams["petId"])
	fmt.Println("include:", result.QueryParams["include"])

	hr = httptest.NewRequest("GET", "/pets/not-a-number", nil)
	req, _ = httpvalidator.NewRequest(hr)

	result = v.Validate(req)
	fmt.Println("valid:", result.Valid())
	fmt.Println("error:", result.Errors[0])
	// Output:
	// valid: true
	// petId: 123
	// include: owner
	// valid: false
	// error: cast error for parameter "petId" in path: failed to cast not-a-number to type integer: strconv.ParseInt: parsing "not-a-number": invalid syntax
}

func ExampleValidator_ValidateBody() {
	specYAML := `
openapi: 3.1.0
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
      responses:
        "201":
          description: Created
`
	doc, _ := spec.Parse([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	hr := httptest.NewRequest("POST", "/pets", strings.NewReader(`{"name":"rex"}`))
	hr.Header.Set("Content-Type", "application/json")
	req, _ := httpvalidator.NewRequest(hr)

	result := v.ValidateBody(req)
	fmt.Println("valid:", result.Valid())
	fmt.Println("name:", result.Body.(map[string]any)["name"])
	// Output:
	// valid: true
	// name: rex
}
