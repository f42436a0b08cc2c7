package tools

// validateArgs evaluates a tool's declarative argument constraints before
// the handler body runs. It returns nil when the arguments are acceptable,
// otherwise an error-shaped Result naming the offending field. Data-shape
// problems never surface as Go errors.
//
// Arguments not named in the schema are ignored rather than rejected; the
// protocol layer is allowed to attach metadata the tool never looks at.
func validateArgs(schema Schema, args map[string]any) *Result {
	for _, name := range schema.Required {
		v, ok := args[name]
		if !ok || v == nil {
			return Errorf("missing required argument %q", name)
		}
		if s, isStr := v.(string); isStr && s == "" {
			return Errorf("missing required argument %q", name)
		}
	}

	for name, prop := range schema.Properties {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		if res := checkProperty(name, prop, v); res != nil {
			return res
		}
	}
	return nil
}

func checkProperty(name string, prop Property, v any) *Result {
	switch prop.Type {
	case "string":
		s, ok := v.(string)
		if !ok {
			return Errorf("argument %q must be a string, got %T", name, v)
		}
		if prop.MinLength > 0 && len(s) < prop.MinLength {
			return Errorf("argument %q must be at least %d characters", name, prop.MinLength)
		}
		if prop.MaxLength > 0 && len(s) > prop.MaxLength {
			return Errorf("argument %q must be at most %d characters", name, prop.MaxLength)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return Errorf("argument %q must be a boolean, got %T", name, v)
		}
	case "integer", "number":
		// JSON numbers decode as float64; accept Go ints for direct calls.
		switch v.(type) {
		case float64, int, int64:
		default:
			return Errorf("argument %q must be a number, got %T", name, v)
		}
	}

	if len(prop.Enum) > 0 {
		for _, allowed := range prop.Enum {
			if v == allowed {
				return nil
			}
		}
		return Errorf("argument %q must be one of %v", name, prop.Enum)
	}
	return nil
}

// String extracts a string argument, returning "" when absent or of the
// wrong type. Handlers use this after validation has already enforced
// presence and type for required fields.
func String(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// Bool extracts a boolean argument, defaulting to false.
func Bool(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}
