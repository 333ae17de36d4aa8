// Package document loads Swagger 2.0 and OpenAPI 3 documents, in JSON or
// YAML form, into enforcer schemas. Definitions become a shared arena and
// local $ref pointers resolve to the arena nodes themselves, so recursive
// schemas stay recursive instead of expanding.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
)

// Load decodes data as JSON or YAML, whichever it looks like, and builds
// the schemas it declares. See Build for what the results mean.
func Load(data []byte, opts Options) (*enforcer.Schema, enforcer.Definitions, Diag, error) {
	root, err := Decode(data)
	if err != nil {
		return nil, nil, &simpleDiag{}, err
	}
	return Build(root, opts)
}

// LoadJSON decodes a JSON document and builds its schemas.
func LoadJSON(data []byte, opts Options) (*enforcer.Schema, enforcer.Definitions, Diag, error) {
	root, err := decodeJSON(data)
	if err != nil {
		return nil, nil, &simpleDiag{}, err
	}
	return Build(root, opts)
}

// LoadYAML decodes a YAML document and builds its schemas.
func LoadYAML(data []byte, opts Options) (*enforcer.Schema, enforcer.Definitions, Diag, error) {
	root, err := decodeYAML(data)
	if err != nil {
		return nil, nil, &simpleDiag{}, err
	}
	return Build(root, opts)
}

// Decode decodes data into a normalized map without building schemas.
// Documents whose first non-blank byte is '{' are treated as JSON,
// everything else as YAML.
func Decode(data []byte) (map[string]any, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return decodeJSON(data)
	}
	return decodeYAML(data)
}

// decodeJSON keeps numbers as json.Number so large integer bounds
// survive the round trip untouched.
func decodeJSON(data []byte) (map[string]any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("document: invalid JSON: %w", err)
	}
	return root, nil
}

// decodeYAML scans a possibly multi-document stream and returns the
// first document that is an object, with map keys normalized to strings.
func decodeYAML(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document: invalid YAML: %w", err)
		}
		if m := yamlAnyToStringMap(node); m != nil {
			return m, nil
		}
	}
	return nil, errors.New("document: no object document found")
}

// DetectVersion reports the dialect a decoded document declares. The
// document's own declaration wins; opts.Version covers bare schemas that
// declare nothing, and Swagger 2.0 is the final fallback.
func DetectVersion(root map[string]any, opts Options) enforcer.Version {
	if s, ok := root["swagger"].(string); ok && strings.HasPrefix(s, "2") {
		return enforcer.V2
	}
	if s, ok := root["openapi"].(string); ok && strings.HasPrefix(s, "3") {
		return enforcer.V3
	}
	if opts.Version != 0 {
		return opts.Version
	}
	return enforcer.V2
}

// Build turns a decoded document into enforcer schemas. Definitions are
// gathered from "definitions" and "components.schemas", allocated up
// front, and filled in a second pass so $ref targets share nodes. The
// returned schema is the root interpreted as a schema; it is nil when
// root is a full API document, in which case callers pick a definition
// by name. Warnings about dropped or unresolved constructs land on the
// Diag rather than failing the build.
func Build(root map[string]any, opts Options) (*enforcer.Schema, enforcer.Definitions, Diag, error) {
	if root == nil {
		return nil, nil, &simpleDiag{}, errors.New("document: root is not an object")
	}
	b := &builder{
		version: DetectVersion(root, opts),
		defs:    enforcer.Definitions{},
		raw:     map[string]map[string]any{},
		diag:    &simpleDiag{},
	}
	b.collectDefinitions(root)
	for name := range b.raw {
		b.defs[name] = &enforcer.Schema{}
	}
	for _, name := range sortedDefNames(b.raw) {
		b.fill(b.defs[name], b.raw[name], b.definitionPath(name))
	}

	var schema *enforcer.Schema
	if !isDocument(root) {
		schema = b.build(stripArena(root), "")
	}
	return schema, b.defs, b.diag, nil
}

// isDocument distinguishes a full API document from a bare schema.
func isDocument(root map[string]any) bool {
	for _, key := range []string{"swagger", "openapi", "paths"} {
		if _, ok := root[key]; ok {
			return true
		}
	}
	return false
}

// stripArena removes the definition containers from a bare schema root
// so pairing $ref with local definitions does not trip the warning
// about keywords beside $ref.
func stripArena(root map[string]any) map[string]any {
	if _, ok := root["$ref"]; !ok {
		return root
	}
	out := make(map[string]any, len(root))
	for k, v := range root {
		if k == "definitions" || k == "components" {
			continue
		}
		out[k] = v
	}
	return out
}
