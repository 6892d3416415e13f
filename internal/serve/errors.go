package serve

import "errors"

// ErrMalformedRequestBody is returned when a greet body is not a JSON value
// the greeting can be rendered from
var ErrMalformedRequestBody = errors.New("malformed request body")

// invalidRequestMessage is the fixed client-facing text for ErrMalformedRequestBody
const invalidRequestMessage = "Invalid request"
