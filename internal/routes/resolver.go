package routes

import "fmt"

// Resolve returns the response of the first route whose path equals path,
// inside the first group whose name equals group. Keys are compared as-is.
func (c *Configuration) Resolve(group, path string) (Value, error) {
	if c != nil {
		for _, g := range c.groups {
			if g.Group != group {
				continue
			}
			for _, r := range g.Routes {
				if r.Path == path {
					return r.Response, nil
				}
			}
			return Value{}, fmt.Errorf("%w: %q has no path %q", ErrRouteNotFound, group, path)
		}
	}
	return Value{}, fmt.Errorf("%w: %q", ErrGroupNotFound, group)
}
