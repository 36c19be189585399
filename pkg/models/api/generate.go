package api

// GenerateResponse returns the generated template files keyed by filename,
// plus free-form guidance notes.
type GenerateResponse struct {
	Files map[string]string `json:"files"`
	Notes string            `json:"notes"`
}
