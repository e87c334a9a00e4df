package web

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const schemaCheckout = `{
  "type": "object",
  "required": ["destination", "package", "date", "travelers"],
  "properties": {
    "destination": {"type": "string", "minLength": 1},
    "package": {"type": "string", "pattern": "^\\s*(?i:diamond|platinum|standard|premium)\\s*$"},
    "date": {"type": "string"},
    "travelers": {"type": "integer"},
    "guestEmail": {"type": "string"},
    "payment": {
      "type": "object",
      "properties": {
        "method": {"type": "string"},
        "card": {
          "type": "object",
          "properties": {
            "name": {"type": "string"},
            "number": {"type": "string"},
            "expMonth": {"type": "string"},
            "expYear": {"type": "string"},
            "cvc": {"type": "string"}
          }
        }
      }
    }
  }
}`

const schemaQuote = `{
  "type": "object",
  "required": ["package", "travelers"],
  "properties": {
    "package": {"type": "string", "pattern": "^\\s*(?i:diamond|platinum|standard|premium)\\s*$"},
    "travelers": {"type": "integer", "minimum": 1, "maximum": 10}
  }
}`

const schemaSignIn = `{
  "type": "object",
  "required": ["email", "password"],
  "properties": {
    "email": {"type": "string"},
    "password": {"type": "string"}
  }
}`

const schemaSignUp = `{
  "type": "object",
  "properties": {
    "email": {"type": "string"},
    "password": {"type": "string"},
    "firstName": {"type": "string"},
    "lastName": {"type": "string"}
  }
}`

const schemaEmail = `{
  "type": "object",
  "properties": {
    "email": {"type": "string"}
  }
}`

const schemaRestore = `{
  "type": "object",
  "required": ["accessToken"],
  "properties": {
    "accessToken": {"type": "string", "minLength": 1}
  }
}`

var (
	checkoutLoader = gojsonschema.NewStringLoader(schemaCheckout)
	quoteLoader    = gojsonschema.NewStringLoader(schemaQuote)
	signInLoader   = gojsonschema.NewStringLoader(schemaSignIn)
	signUpLoader   = gojsonschema.NewStringLoader(schemaSignUp)
	emailLoader    = gojsonschema.NewStringLoader(schemaEmail)
	restoreLoader  = gojsonschema.NewStringLoader(schemaRestore)
)

// SchemaError lists the violations by field, in the same shape as the
// domain input errors.
type SchemaError struct {
	fields map[string][]string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%+v", e.fields)
}

func (e *SchemaError) Fields() map[string][]string {
	return e.fields
}

func validateJSONSchema(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{fields: make(map[string][]string)}

	for _, e := range result.Errors() {
		schemaErr.fields[e.Field()] = append(schemaErr.fields[e.Field()], e.Description())
	}

	return schemaErr
}
