package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatewayFixture is the spec shared by the tool tests: one secured list
// operation, one unsecured create with a required body, and one path
// parameter operation.
const gatewayFixture = `openapi: "3.0.0"
info:
  title: Pet Gateway
  version: "1.0"
components:
  securitySchemes:
    ApiKey:
      type: apiKey
      name: X-Api-Key
      in: header
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
        name:
          type: string
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      tags: [pets, read]
      security:
        - ApiKey: []
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            maximum: 100
      responses:
        "200":
          description: OK
          headers:
            X-Total-Count:
              schema:
                type: integer
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
    post:
      operationId: createPet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        "201":
          description: Created
  /pets/{petId}:
    get:
      operationId: getPet
      deprecated: true
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: OK
`

func gatewaySpec() specInput {
	return specInput{Content: gatewayFixture}
}

func callValidateRequest(t *testing.T, input validateRequestInput) (*mcp.CallToolResult, renderedResult) {
	t.Helper()
	result, out, err := handleValidateRequest(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	if out == nil {
		return result, renderedResult{}
	}
	rr, ok := out.(renderedResult)
	require.True(t, ok, "expected renderedResult, got %T", out)
	return result, rr
}

func TestValidateRequestTool_Valid(t *testing.T) {
	specCache.reset()
	result, output := callValidateRequest(t, validateRequestInput{
		Spec:    gatewaySpec(),
		Method:  "GET",
		Path:    "/pets?limit=5",
		Headers: map[string]string{"X-Api-Key": "sk-test"},
	})
	require.Nil(t, result)

	assert.True(t, output.Valid)
	assert.Equal(t, 0, output.ErrorCount)
	assert.Equal(t, "/pets", output.MatchedPath)
	assert.Equal(t, "GET", output.MatchedMethod)
	require.NotNil(t, output.Params)
	assert.Equal(t, int64(5), output.Params.Query["limit"])
	assert.Equal(t, []string{"ApiKey"}, output.Security)
}

func TestValidateRequestTool_SeparateQueryMap(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:    gatewaySpec(),
		Method:  "GET",
		Path:    "/pets",
		Query:   map[string]string{"limit": "7"},
		Headers: map[string]string{"X-Api-Key": "sk-test"},
	})
	assert.True(t, output.Valid)
	require.NotNil(t, output.Params)
	assert.Equal(t, int64(7), output.Params.Query["limit"])
}

func TestValidateRequestTool_CastFailure(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:   gatewaySpec(),
		Method: "GET",
		Path:   "/pets/not-a-number",
	})

	assert.False(t, output.Valid)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "cast", output.Errors[0].Kind)
	assert.Equal(t, "petId", output.Errors[0].Name)
	assert.Equal(t, "path", output.Errors[0].In)
	assert.Equal(t, "/pets/{petId}", output.MatchedPath)
}

func TestValidateRequestTool_SecurityRequired(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:   gatewaySpec(),
		Method: "GET",
		Path:   "/pets",
	})

	assert.False(t, output.Valid)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "security", output.Errors[0].Kind)
	assert.Empty(t, output.Security)
}

func TestValidateRequestTool_PathNotFound(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:   gatewaySpec(),
		Method: "GET",
		Path:   "/unknown",
	})

	assert.False(t, output.Valid)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "path", output.Errors[0].Kind)
	assert.Empty(t, output.MatchedPath)
}

func TestValidateRequestTool_MethodNotAllowed(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:   gatewaySpec(),
		Method: "DELETE",
		Path:   "/pets",
	})

	assert.False(t, output.Valid)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "method_not_allowed", output.Errors[0].Kind)
}

func TestValidateRequestTool_Body(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:        gatewaySpec(),
		Method:      "POST",
		Path:        "/pets",
		Body:        `{"id": 1, "name": "Rex"}`,
		ContentType: "application/json",
	})

	assert.True(t, output.Valid)
	assert.True(t, output.BodyPresent)
	body, ok := output.Body.(map[string]any)
	require.True(t, ok, "decoded body should be a map, got %T", output.Body)
	assert.Equal(t, "Rex", body["name"])
}

func TestValidateRequestTool_ContentTypeViaHeader(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:    gatewaySpec(),
		Method:  "POST",
		Path:    "/pets",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    `{"id": 2, "name": "Bo"}`,
	})
	assert.True(t, output.Valid, "lowercase content-type header should be honored: %v", output.Errors)
}

func TestValidateRequestTool_MissingBody(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:   gatewaySpec(),
		Method: "POST",
		Path:   "/pets",
	})

	assert.False(t, output.Valid)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "missing_body", output.Errors[0].Kind)
	assert.False(t, output.BodyPresent)
}

func TestValidateRequestTool_SchemaFailure(t *testing.T) {
	specCache.reset()
	_, output := callValidateRequest(t, validateRequestInput{
		Spec:        gatewaySpec(),
		Method:      "POST",
		Path:        "/pets",
		Body:        `{"id": 3}`,
		ContentType: "application/json",
	})

	assert.False(t, output.Valid)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "schema", output.Errors[0].Kind)
	assert.Equal(t, "body", output.Errors[0].In)
}

func TestValidateRequestTool_MissingMethod(t *testing.T) {
	result, _ := callValidateRequest(t, validateRequestInput{
		Spec: gatewaySpec(),
		Path: "/pets",
	})
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestValidateRequestTool_MissingPath(t *testing.T) {
	result, _ := callValidateRequest(t, validateRequestInput{
		Spec:   gatewaySpec(),
		Method: "GET",
	})
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestValidateRequestTool_BadSpec(t *testing.T) {
	specCache.reset()
	result, _ := callValidateRequest(t, validateRequestInput{
		Spec:   specInput{Content: "openapi: [broken"},
		Method: "GET",
		Path:   "/pets",
	})
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestBuildRequest(t *testing.T) {
	input := validateRequestInput{
		Method:  "get",
		Path:    "/pets/42?verbose=true&verbose=false",
		Headers: map[string]string{"x-api-key": "sk", "Content-Type": "text/plain"},
		Cookies: map[string]string{"session": "abc"},
	}
	req, err := buildRequest(input)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/pets/42", req.Path)
	assert.Equal(t, []string{"true", "false"}, req.Params.Query.GetAll("verbose"))
	assert.Equal(t, "sk", req.Params.Header.Get("X-Api-Key"))
	assert.Equal(t, "abc", req.Params.Cookie.Get("session"))
	assert.Equal(t, "text/plain", req.ContentType)
	assert.Nil(t, req.Body, "no body provided means nil body")
}
