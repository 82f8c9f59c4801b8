package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string            // message safe to return to the caller
	Fields    map[string]string // field-level validation errors (optional)
	Status    int               // explicit HTTP status override (gateway passthrough); 0 = derive from Kind
	Err       error             // internal error (for logs)
}
