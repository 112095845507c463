package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the JSON route table.
const EnvVar = "API_ROUTES_CONFIG"

// Origins reported by Load.
const (
	OriginDefault = "default"
	OriginInline  = "inline"
	OriginFile    = "file"
)

const (
	defaultGroup          = "mcp"
	defaultKeyResponse    = "这是key的响应值"
	defaultSecretResponse = "这是secret的响应值"
)

// Source describes where a route table may come from. File wins over Inline
// when both are set; an empty Source yields the default table.
type Source struct {
	Inline string
	File   string
}

// LoadResult reports the table chosen by Load and how it was chosen.
type LoadResult struct {
	Config *Configuration
	// Origin is where Config came from; Requested is the source that was
	// asked for. They differ only on fallback.
	Origin    string
	Requested string
	// Fallback is set when a configured source was rejected and the default
	// table was used instead. Err holds the rejection reason.
	Fallback bool
	Err      error
}

// Default returns the built-in route table: group "mcp" with "key" and "secret".
func Default() *Configuration {
	return NewConfiguration(GroupEntry{
		Group: defaultGroup,
		Routes: []RouteEntry{
			{Path: "key", Response: StringValue(defaultKeyResponse)},
			{Path: "secret", Response: StringValue(defaultSecretResponse)},
		},
	})
}

// LoadFromEnv loads the route table from API_ROUTES_CONFIG, falling back to
// Default when the variable is unset, empty or invalid.
func LoadFromEnv(logger *zap.Logger) *Configuration {
	return Load(Source{Inline: os.Getenv(EnvVar)}, logger).Config
}

// Load resolves src into a Configuration. It never fails: unreadable or
// invalid sources are logged and replaced by Default.
func Load(src Source, logger *zap.Logger) LoadResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		cfg    *Configuration
		err    error
		origin string
	)
	switch {
	case src.File != "":
		origin = OriginFile
		cfg, err = ParseFile(src.File)
	case src.Inline != "":
		origin = OriginInline
		cfg, err = Parse(src.Inline)
	default:
		return LoadResult{Config: Default(), Origin: OriginDefault, Requested: OriginDefault}
	}

	if err == nil {
		return LoadResult{Config: cfg, Origin: origin, Requested: origin}
	}

	fields := []zap.Field{zap.String("origin", origin), zap.Error(err)}
	if src.File != "" {
		fields = append(fields, zap.String("file", src.File))
	}
	if errors.Is(err, ErrInvalidShape) {
		logger.Warn("routes configuration has an invalid shape, using default routes", fields...)
	} else {
		logger.Error("failed to parse routes configuration, using default routes", fields...)
	}

	return LoadResult{Config: Default(), Origin: OriginDefault, Requested: origin, Fallback: true, Err: err}
}

// ParseFile reads a route table from a JSON or YAML file.
func ParseFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML parses a route table written in YAML. JSON documents are parsed
// directly so their response values keep the exact encoding.
func ParseYAML(data []byte) (*Configuration, error) {
	if gjson.ValidBytes(data) {
		return Parse(string(data))
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedYAML, err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, shapeError("YAML document cannot be represented as JSON: %v", err)
	}
	return Parse(string(encoded))
}

// Parse validates raw against the route table shape and builds a
// Configuration. Every shape violation is reported, combined with multierr.
func Parse(raw string) (*Configuration, error) {
	if !gjson.Valid(raw) {
		return nil, ErrMalformedJSON
	}

	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil, shapeError("top-level value must be an array of groups")
	}

	var (
		groups []GroupEntry
		errs   error
	)
	for idx, item := range root.Array() {
		group, err := parseGroup(idx, item)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		groups = append(groups, group)
	}
	if errs != nil {
		return nil, errs
	}

	return NewConfiguration(groups...), nil
}

func parseGroup(idx int, item gjson.Result) (GroupEntry, error) {
	if !item.IsObject() {
		return GroupEntry{}, shapeError("groups[%d]: must be an object", idx)
	}

	var errs error
	name := lastField(item, "group")
	if name.Type != gjson.String {
		errs = multierr.Append(errs, shapeError("groups[%d].group: must be a string", idx))
	}

	routes := lastField(item, "routes")
	if !routes.IsArray() {
		return GroupEntry{}, multierr.Append(errs, shapeError("groups[%d].routes: must be an array", idx))
	}

	entries := make([]RouteEntry, 0, len(routes.Array()))
	for ridx, route := range routes.Array() {
		if !route.IsObject() {
			errs = multierr.Append(errs, shapeError("groups[%d].routes[%d]: must be an object", idx, ridx))
			continue
		}

		path := lastField(route, "path")
		if path.Type != gjson.String {
			errs = multierr.Append(errs, shapeError("groups[%d].routes[%d].path: must be a string", idx, ridx))
		}

		response := lastField(route, "response")
		if !response.Exists() {
			errs = multierr.Append(errs, shapeError("groups[%d].routes[%d].response: is required", idx, ridx))
		}

		entries = append(entries, RouteEntry{Path: path.Str, Response: valueFromResult(response)})
	}
	if errs != nil {
		return GroupEntry{}, errs
	}

	return GroupEntry{Group: name.Str, Routes: entries}, nil
}

// lastField returns the last occurrence of key in obj. gjson's Get stops at
// the first one, while a JSON object with a repeated key keeps the last.
func lastField(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found = v
		}
		return true
	})
	return found
}

func shapeError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidShape}, args...)...)
}
