package domain

// Document identifies the record a signature is bound to. The verification
// engine only correlates on identity; content inspection happens upstream.
type Document struct {
	ID string `json:"id"`
}
