package document

import (
	"fmt"

	enforcer "github.com/byu-oit-appdev/swagger-enforcer"
)

// Options controls how raw documents are interpreted.
type Options struct {
	// Version forces the schema dialect when the document itself does
	// not declare one. Zero falls back to Swagger 2.0.
	Version enforcer.Version
}

// Diag carries non-fatal warnings produced while building schemas.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
