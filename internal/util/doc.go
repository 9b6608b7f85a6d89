// Package util holds small helpers shared by the model adapters and the
// insight client: JSON schema reflection and validation, prompt templates
// and response cleanup.
package util
