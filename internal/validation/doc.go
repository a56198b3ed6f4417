// Package validation wraps go-playground/validator/v10 behind a singleton
// *validator.Validate and a ValidateStruct helper that turns field errors
// into an APIError shaped like the rest of the HTTP surface's error
// envelope. internal/api request structs carry `validate:"..."` tags;
// handlers call ValidateStruct before touching application logic.
package validation
