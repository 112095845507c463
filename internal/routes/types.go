package routes

import "encoding/json"

// RouteEntry maps a path within a group to its response value.
type RouteEntry struct {
	Path     string `json:"path"`
	Response Value  `json:"response"`
}

// GroupEntry is a named, ordered set of routes.
type GroupEntry struct {
	Group  string       `json:"group"`
	Routes []RouteEntry `json:"routes"`
}

// Configuration is the ordered route table served by the API. It is never
// mutated after construction; reloads build a new Configuration.
type Configuration struct {
	groups []GroupEntry
}

// NewConfiguration builds a Configuration from copies of the given groups.
func NewConfiguration(groups ...GroupEntry) *Configuration {
	cloned := make([]GroupEntry, len(groups))
	for i, g := range groups {
		routes := make([]RouteEntry, len(g.Routes))
		copy(routes, g.Routes)
		cloned[i] = GroupEntry{Group: g.Group, Routes: routes}
	}
	return &Configuration{groups: cloned}
}

// Groups returns a copy of the configured groups in declaration order.
func (c *Configuration) Groups() []GroupEntry {
	if c == nil {
		return nil
	}
	out := make([]GroupEntry, len(c.groups))
	for i, g := range c.groups {
		routes := make([]RouteEntry, len(g.Routes))
		copy(routes, g.Routes)
		out[i] = GroupEntry{Group: g.Group, Routes: routes}
	}
	return out
}

// GroupCount returns the number of configured groups.
func (c *Configuration) GroupCount() int {
	if c == nil {
		return 0
	}
	return len(c.groups)
}

// RouteCount returns the number of routes across all groups.
func (c *Configuration) RouteCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, g := range c.groups {
		total += len(g.Routes)
	}
	return total
}

// MarshalJSON encodes the configuration in the API_ROUTES_CONFIG format.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	if c == nil || c.groups == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.groups)
}
