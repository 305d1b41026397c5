package schema

import "fmt"

// Validation intents distinguish which name list failed.
const (
	IntentInclude = "include tables"
	IntentIgnore  = "ignore tables"
	IntentTarget  = "target tables"
)

// UnknownTableError reports a candidate name absent from the loaded
// table set, along with the intent of the list it came from.
type UnknownTableError struct {
	Intent string
	Table  string
}

// Error implements the error interface.
func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("%s: table %q not found in database", e.Intent, e.Table)
}

// Validate checks every candidate name against the loaded table set and
// fails on the first name not present. Validation happens before any
// query is issued on behalf of the list.
func Validate(tables []Table, names []string, intent string) error {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	for _, name := range names {
		if !known[name] {
			return &UnknownTableError{Intent: intent, Table: name}
		}
	}

	return nil
}

// Filter applies an include list (intersect, table order preserved)
// then an ignore list (subtract) to the loaded table set. Empty lists
// are no-ops.
func Filter(tables []Table, include, ignore []string) []Table {
	included := make(map[string]bool, len(include))
	for _, name := range include {
		included[name] = true
	}
	ignored := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignored[name] = true
	}

	filtered := make([]Table, 0, len(tables))
	for _, t := range tables {
		if len(include) > 0 && !included[t.Name] {
			continue
		}
		if ignored[t.Name] {
			continue
		}
		filtered = append(filtered, t)
	}

	return filtered
}

// Names returns the table names in list order.
func Names(tables []Table) []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names
}
