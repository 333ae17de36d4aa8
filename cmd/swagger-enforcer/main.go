package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	j "github.com/goccy/go-json"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
	"github.com/byu-oit-appdev/swagger-enforcer/document"
	"github.com/byu-oit-appdev/swagger-enforcer/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "validate":
		validateCmd(os.Args[2:])
	case "populate":
		populateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "swagger-enforcer CLI\n\nUsage:\n  swagger-enforcer validate -schema doc.yaml [-definition Name] -value value.json [-lang en|ja]\n  swagger-enforcer populate -schema doc.yaml [-definition Name] [-params params.json] [-value initial.json]\n\nNotes:\n  - Schema documents may be JSON or YAML; values and params are JSON.\n  - validate exits 1 when the value does not conform and prints one issue per line.")
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath, defName, valuePath, lang string
	fs.StringVar(&schemaPath, "schema", "", "schema document (JSON or YAML)")
	fs.StringVar(&defName, "definition", "", "definition name to validate against (for full API documents)")
	fs.StringVar(&valuePath, "value", "", "JSON value to validate")
	fs.StringVar(&lang, "lang", "en", "message language")
	_ = fs.Parse(args)
	if schemaPath == "" || valuePath == "" {
		fs.Usage()
		os.Exit(2)
	}
	i18n.SetLanguage(lang)

	enf := loadEnforcer(schemaPath, defName)
	value := loadJSON(valuePath)

	iss := enf.Errors(value)
	if len(iss) == 0 {
		fmt.Println("ok")
		return
	}
	for _, is := range iss {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", is.Code, is.Path, is.Message)
	}
	os.Exit(1)
}

func populateCmd(args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	var schemaPath, defName, paramsPath, valuePath string
	fs.StringVar(&schemaPath, "schema", "", "schema document (JSON or YAML)")
	fs.StringVar(&defName, "definition", "", "definition name to materialize (for full API documents)")
	fs.StringVar(&paramsPath, "params", "", "JSON object of template/variable parameters")
	fs.StringVar(&valuePath, "value", "", "JSON initial value to augment")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	enf := loadEnforcer(schemaPath, defName)

	params := map[string]any{}
	if paramsPath != "" {
		raw := loadJSON(paramsPath)
		m, ok := raw.(map[string]any)
		if !ok {
			fatalf("params: %s is not a JSON object", paramsPath)
		}
		params = m
	}
	var initial any
	if valuePath != "" {
		initial = loadJSON(valuePath)
	}

	result, _ := enf.Populate(params, initial)
	out, err := j.MarshalIndent(result, "", "  ")
	if err != nil {
		fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}

func loadEnforcer(schemaPath, defName string) *enforcer.Enforcer {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	schema, defs, diag, err := document.Load(data, document.Options{})
	if err != nil {
		fatalf("loading schema: %v", err)
	}
	for _, w := range diag.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if defName != "" {
		s, ok := defs[defName]
		if !ok {
			fatalf("definition %q not found", defName)
		}
		schema = s
	}
	if schema == nil {
		fatalf("%s is a full API document; pick a schema with -definition", schemaPath)
	}
	opts := enforcer.DefaultOptions()
	opts.Populate.AutoFormat = true
	enf, err := enforcer.New(schema, defs, opts)
	if err != nil {
		fatalf("building enforcer: %v", err)
	}
	return enf
}

func loadJSON(path string) any {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading %s: %v", path, err)
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		fatalf("decoding %s: %v", path, err)
	}
	return v
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
