package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

/* Registry holds the webhook table loaded at startup
 * It is read-only after Load and safe for concurrent use
 */

// NotFoundError is returned when a key is not in the registry
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("endpoint not found: %s", e.Key)
}

// File represents the structure of webhooks.yaml
type File struct {
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig represents a single endpoint in the YAML file
type EndpointConfig struct {
	Key            string   `yaml:"key"`
	URL            string   `yaml:"url"`
	TestURL        string   `yaml:"test_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"` // Default: 60
	ResultFields   []string `yaml:"result_fields"`
	RequiredFields []string `yaml:"required_fields"`
	Aliases        []string `yaml:"aliases"`
	SigningSecret  string   `yaml:"signing_secret"`
	Fallback       []any    `yaml:"fallback"`
}

// Overrides are environment driven URL overrides for the primary workflow webhook
type Overrides struct {
	ProductionURL string
	TestURL       string
}

const defaultTimeout = 60 * time.Second

type Registry struct {
	endpoints map[string]Endpoint
}

// NewRegistry validates the given endpoints and builds a registry from them
func NewRegistry(list []Endpoint) (*Registry, error) {
	r := &Registry{
		endpoints: make(map[string]Endpoint, len(list)),
	}
	for _, e := range list {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validating endpoint: %w", err)
		}
		if _, dup := r.endpoints[e.Key]; dup {
			return nil, fmt.Errorf("duplicate endpoint key: %s", e.Key)
		}
		r.endpoints[e.Key] = e
	}
	return r, nil
}

// Load builds the registry from the compiled-in defaults, the optional YAML
// file at path (entries replace defaults with the same key) and the overrides.
// A missing file is not an error.
func Load(path string, overrides Overrides) (*Registry, error) {
	table := Defaults()

	if path != "" {
		fromFile, err := ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		table = merge(table, fromFile)
	}

	for i := range table {
		if table[i].Key != ProductImage && table[i].Key != Workflow {
			continue
		}
		if overrides.ProductionURL != "" {
			table[i].URL = overrides.ProductionURL
		}
		if overrides.TestURL != "" {
			table[i].TestURL = overrides.TestURL
		}
	}

	return NewRegistry(table)
}

// ReadFile reads and parses a webhooks.yaml file without validating it
func ReadFile(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading webhooks file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing webhooks YAML: %w", err)
	}

	list := make([]Endpoint, 0, len(file.Endpoints))
	for _, ec := range file.Endpoints {
		timeout := time.Duration(ec.TimeoutSeconds) * time.Second
		if ec.TimeoutSeconds == 0 {
			timeout = defaultTimeout
		}

		fallback := make([]json.RawMessage, 0, len(ec.Fallback))
		for _, v := range ec.Fallback {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encoding fallback for endpoint %s: %w", ec.Key, err)
			}
			fallback = append(fallback, data)
		}

		list = append(list, Endpoint{
			Key:            ec.Key,
			URL:            ec.URL,
			TestURL:        ec.TestURL,
			Timeout:        timeout,
			ResultFields:   ec.ResultFields,
			RequiredFields: ec.RequiredFields,
			Aliases:        ec.Aliases,
			SigningSecret:  ec.SigningSecret,
			Fallback:       fallback,
		})
	}
	return list, nil
}

func merge(base, overlay []Endpoint) []Endpoint {
	index := make(map[string]int, len(base))
	for i, e := range base {
		index[e.Key] = i
	}
	for _, e := range overlay {
		if i, ok := index[e.Key]; ok {
			base[i] = e
			continue
		}
		index[e.Key] = len(base)
		base = append(base, e)
	}
	return base
}

// Resolve retrieves an endpoint by its key
func (r *Registry) Resolve(key string) (Endpoint, error) {
	e, exists := r.endpoints[key]
	if !exists {
		return Endpoint{}, &NotFoundError{Key: key}
	}
	return e, nil
}

// List returns all endpoints sorted by key
func (r *Registry) List() []Endpoint {
	list := make([]Endpoint, 0, len(r.endpoints))
	for _, e := range r.endpoints {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list
}

// Exists checks if a key is registered
func (r *Registry) Exists(key string) bool {
	_, exists := r.endpoints[key]
	return exists
}

// MaxTimeout returns the longest endpoint timeout
func (r *Registry) MaxTimeout() time.Duration {
	var max time.Duration
	for _, e := range r.endpoints {
		if e.Timeout > max {
			max = e.Timeout
		}
	}
	return max
}
