package enforcer

// Package enforcer validates runtime values against OpenAPI/JSON-Schema
// style schemas and keeps live values schema-conformant as they mutate.
//
// It provides:
//
// - Recursive validation over combinators (allOf/anyOf/oneOf/not),
//   discriminators and type/format rules, with a stable error model via
//   Issues (JSON Pointer, code, message)
// - Live enforcement: Object and Array wrappers that validate every
//   mutation before committing it, so a wrapped value is always valid or
//   the mutation is rejected
// - Materialization: Populate builds schema-conformant values from
//   templates, variables and defaults, best-effort
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations
//   under internal/.
// - Place document loading under document/, request parameter mapping under
//   params/, and the CLI under cmd/swagger-enforcer.
// - Every rule is an independent toggle; configuration is an immutable
//   Options value threaded through construction, never process-wide state.
//
// Typical usage:
//
//	schema, defs, _, err := document.Load(data, document.Options{})
//	enf, err := enforcer.New(schema, defs, enforcer.DefaultOptions())
//
//	if err := enf.Validate(value); err != nil { ... }
//
//	obj, err := enf.EnforceObject(value)
//	err = obj.Set("name", "Bob") // rejected unless schema-valid
