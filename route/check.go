package route

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/vitalvas/routekit/pathpattern"
	"github.com/vitalvas/routekit/schema"
)

// Check reports declaration inconsistencies that Define accepts: an
// unsupported method, params schema properties that are not template
// parameters (and the reverse) and status keys that are not valid HTTP
// status codes, range wildcards or "default". It returns nil when the
// route is consistent.
func Check(d *Definition) error {
	var merr *multierror.Error

	if !d.method.Valid() {
		merr = multierror.Append(merr, fmt.Errorf("unsupported method %q", d.method))
	}

	names := pathpattern.ParamNames(d.path)
	if d.request.Params != nil {
		props, ok := propertyNames(d.request.Params.Schema)
		if ok {
			for _, prop := range props {
				if !slices.Contains(names, prop) {
					merr = multierror.Append(merr, fmt.Errorf("params property %q is not in path %q", prop, d.path))
				}
			}
			for _, name := range names {
				if !slices.Contains(props, name) {
					merr = multierror.Append(merr, fmt.Errorf("path parameter %q is not in params schema", name))
				}
			}
		}
	}

	for _, key := range d.StatusCodes() {
		if !ValidStatus(key) {
			merr = multierror.Append(merr, fmt.Errorf("invalid status key %q", key))
		}
	}

	return merr.ErrorOrNil()
}

// ValidStatus reports whether key is a status code (100-599), a range
// wildcard (1XX-5XX) or "default".
func ValidStatus(key string) bool {
	if key == "default" {
		return true
	}
	if len(key) != 3 {
		return false
	}
	if key[1:] == "XX" {
		return key[0] >= '1' && key[0] <= '5'
	}
	code, err := strconv.Atoi(key)
	return err == nil && code >= 100 && code <= 599
}

// propertyNames returns the sorted top-level property names of the
// adapter's schema. ok is false when the schema declares none.
func propertyNames(a schema.Adapter) (names []string, ok bool) {
	if a == nil {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			names, ok = nil, false
		}
	}()

	props, isMap := a.JSONSchema()["properties"].(map[string]any)
	if !isMap || len(props) == 0 {
		return nil, false
	}
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, true
}
