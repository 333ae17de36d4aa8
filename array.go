package enforcer

import (
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/byu-oit-appdev/swagger-enforcer/internal/deepeq"
	"github.com/byu-oit-appdev/swagger-enforcer/internal/jsonptr"
)

// Array is a schema-enforced slice wrapper. Mutators assemble the candidate
// result, validate length, new elements and uniqueness, then swap the slice
// atomically; a rejected mutation leaves the data untouched. commit writes
// reallocations back into the parent slot so nested arrays stay visible
// from the root value.
type Array struct {
	enf    *Enforcer
	schema *Schema
	data   []any
	path   string
	commit func([]any)
}

// Value returns the underlying slice, still shared with the wrapper.
func (a *Array) Value() any { return a.data }

// Len is the element count.
func (a *Array) Len() int { return len(a.data) }

func (a *Array) swap(cand []any) {
	a.data = cand
	if a.commit != nil {
		a.commit(cand)
	}
}

func (a *Array) items() *Schema {
	if a.schema == nil {
		return nil
	}
	return a.schema.Items
}

func (a *Array) prepareOne(v any) any {
	v = unwrapContainer(v)
	if it := a.items(); it != nil && a.enf.opts.Enforce.AutoFormat {
		v, _ = Coerce(it, v)
	}
	return v
}

func (a *Array) prepare(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = a.prepareOne(v)
	}
	return out
}

func (a *Array) checkLength(n int) error {
	if a.schema == nil {
		return nil
	}
	en := &a.enf.opts.Enforce
	if en.MaxItems && a.schema.MaxItems != nil && n > *a.schema.MaxItems {
		return Issues{newIssue(a.path, CodeLengthBound, map[string]string{
			"maxItems": strconv.Itoa(*a.schema.MaxItems), "got": strconv.Itoa(n)})}
	}
	if en.MinItems && a.schema.MinItems != nil && n < *a.schema.MinItems {
		return Issues{newIssue(a.path, CodeLengthBound, map[string]string{
			"minItems": strconv.Itoa(*a.schema.MinItems), "got": strconv.Itoa(n)})}
	}
	return nil
}

// checkElems validates the new elements against the items schema; start is
// the index of the first new element in the candidate.
func (a *Array) checkElems(vals []any, start int) error {
	it := a.items()
	if it == nil {
		return nil
	}
	vd := a.enf.newValidator(a.enf.opts.Enforce.Constraints)
	var iss Issues
	for i, v := range vals {
		iss = vd.value(it, v, jsonptr.Index(a.path, start+i), 0, iss)
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (a *Array) checkUnique(cand []any) error {
	if a.schema == nil || !a.schema.UniqueItems || !a.enf.opts.Enforce.UniqueItems {
		return nil
	}
	for i := 1; i < len(cand); i++ {
		for k := 0; k < i; k++ {
			if deepeq.Equal(cand[i], cand[k]) {
				return Issues{newIssue(jsonptr.Index(a.path, i), CodeUniqueness,
					map[string]string{"duplicateOf": strconv.Itoa(k)})}
			}
		}
	}
	return nil
}

// At reads one element, lazily wrapping nested containers with the items
// schema. Schemaless subtrees come back raw.
func (a *Array) At(i int) (any, bool) {
	if i < 0 || i >= len(a.data) {
		return nil, false
	}
	v := a.data[i]
	it := a.items()
	if it == nil {
		return v, true
	}
	switch t := v.(type) {
	case map[string]any:
		return &Object{enf: a.enf, schema: it, data: t, path: jsonptr.Index(a.path, i)}, true
	case []any:
		idx := i
		return &Array{enf: a.enf, schema: it, data: t, path: jsonptr.Index(a.path, i),
			commit: func(s []any) { a.data[idx] = s }}, true
	default:
		return v, true
	}
}

// Set writes one element. Index len appends, mirroring assignment one past
// the end; anything further out returns ErrIndexOutOfRange.
func (a *Array) Set(i int, value any) error {
	if i < 0 || i > len(a.data) {
		return ErrIndexOutOfRange
	}
	v := a.prepareOne(value)
	if i == len(a.data) {
		if err := a.checkLength(len(a.data) + 1); err != nil {
			return err
		}
	}
	if err := a.checkElems([]any{v}, i); err != nil {
		return err
	}
	cand := append([]any(nil), a.data...)
	if i == len(cand) {
		cand = append(cand, v)
	} else {
		cand[i] = v
	}
	if err := a.checkUnique(cand); err != nil {
		return err
	}
	a.swap(cand)
	return nil
}

// Push appends values. Nothing is applied when any check fails.
func (a *Array) Push(values ...any) error {
	vals := a.prepare(values)
	if err := a.checkLength(len(a.data) + len(vals)); err != nil {
		return err
	}
	if err := a.checkElems(vals, len(a.data)); err != nil {
		return err
	}
	cand := append(append([]any(nil), a.data...), vals...)
	if err := a.checkUnique(cand); err != nil {
		return err
	}
	a.swap(cand)
	return nil
}

// Pop removes and returns the last element. Empty arrays yield (nil, nil).
func (a *Array) Pop() (any, error) {
	if len(a.data) == 0 {
		return nil, nil
	}
	if err := a.checkLength(len(a.data) - 1); err != nil {
		return nil, err
	}
	last := a.data[len(a.data)-1]
	a.swap(append([]any(nil), a.data[:len(a.data)-1]...))
	return last, nil
}

// Shift removes and returns the first element.
func (a *Array) Shift() (any, error) {
	if len(a.data) == 0 {
		return nil, nil
	}
	if err := a.checkLength(len(a.data) - 1); err != nil {
		return nil, err
	}
	first := a.data[0]
	a.swap(append([]any(nil), a.data[1:]...))
	return first, nil
}

// Unshift prepends values under the same checks as Push.
func (a *Array) Unshift(values ...any) error {
	vals := a.prepare(values)
	if err := a.checkLength(len(a.data) + len(vals)); err != nil {
		return err
	}
	if err := a.checkElems(vals, 0); err != nil {
		return err
	}
	cand := append(append([]any(nil), vals...), a.data...)
	if err := a.checkUnique(cand); err != nil {
		return err
	}
	a.swap(cand)
	return nil
}

// Splice removes deleteCount elements at start, inserts items in their
// place and returns the removed elements. Negative start counts back from
// the end; out-of-range values clamp.
func (a *Array) Splice(start, deleteCount int, items ...any) ([]any, error) {
	n := len(a.data)
	start = relativeIndex(start, n)
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > n-start {
		deleteCount = n - start
	}
	vals := a.prepare(items)
	if err := a.checkLength(n - deleteCount + len(vals)); err != nil {
		return nil, err
	}
	if err := a.checkElems(vals, start); err != nil {
		return nil, err
	}
	cand := make([]any, 0, n-deleteCount+len(vals))
	cand = append(cand, a.data[:start]...)
	cand = append(cand, vals...)
	cand = append(cand, a.data[start+deleteCount:]...)
	if err := a.checkUnique(cand); err != nil {
		return nil, err
	}
	removed := append([]any(nil), a.data[start:start+deleteCount]...)
	a.swap(cand)
	return removed, nil
}

// Fill writes value into [start, end). Filling more than one slot of a
// uniqueItems array fails the uniqueness check.
func (a *Array) Fill(value any, start, end int) error {
	n := len(a.data)
	start = relativeIndex(start, n)
	end = relativeIndex(end, n)
	if end <= start {
		return nil
	}
	v := a.prepareOne(value)
	if err := a.checkElems([]any{v}, start); err != nil {
		return err
	}
	cand := append([]any(nil), a.data...)
	for i := start; i < end; i++ {
		cand[i] = v
	}
	if err := a.checkUnique(cand); err != nil {
		return err
	}
	a.swap(cand)
	return nil
}

// CopyWithin copies [start, end) over the slots beginning at target. The
// length never changes, so only uniqueness can reject it.
func (a *Array) CopyWithin(target, start, end int) error {
	n := len(a.data)
	target = relativeIndex(target, n)
	start = relativeIndex(start, n)
	end = relativeIndex(end, n)
	if end <= start {
		return nil
	}
	count := end - start
	if target+count > n {
		count = n - target
	}
	cand := append([]any(nil), a.data...)
	copy(cand[target:target+count], a.data[start:start+count])
	if err := a.checkUnique(cand); err != nil {
		return err
	}
	a.swap(cand)
	return nil
}

// derive validates a candidate as a whole and wraps it as a new enforced
// array independent of the receiver.
func (a *Array) derive(cand, newVals []any, start int) (*Array, error) {
	if err := a.checkLength(len(cand)); err != nil {
		return nil, err
	}
	if err := a.checkElems(newVals, start); err != nil {
		return nil, err
	}
	if err := a.checkUnique(cand); err != nil {
		return nil, err
	}
	return &Array{enf: a.enf, schema: a.schema, data: cand, path: a.path}, nil
}

// Concat returns a new enforced array of the receiver's elements followed
// by values. The receiver is unchanged.
func (a *Array) Concat(values ...any) (*Array, error) {
	vals := a.prepare(values)
	cand := append(append([]any(nil), a.data...), vals...)
	return a.derive(cand, vals, len(a.data))
}

// Filter returns a new enforced array holding the elements keep reports
// true for. The result must still satisfy the array constraints.
func (a *Array) Filter(keep func(v any, i int) bool) (*Array, error) {
	cand := make([]any, 0, len(a.data))
	for i, v := range a.data {
		if keep(v, i) {
			cand = append(cand, v)
		}
	}
	return a.derive(cand, nil, 0)
}

// Map returns a new enforced array built by transforming every element.
func (a *Array) Map(f func(v any, i int) any) (*Array, error) {
	cand := make([]any, len(a.data))
	for i, v := range a.data {
		cand[i] = a.prepareOne(f(v, i))
	}
	return a.derive(cand, cand, 0)
}

// Slice returns a new enforced array of [start, end); negatives count back
// from the end.
func (a *Array) Slice(start, end int) (*Array, error) {
	n := len(a.data)
	start = relativeIndex(start, n)
	end = relativeIndex(end, n)
	if end < start {
		end = start
	}
	cand := append([]any(nil), a.data[start:end]...)
	return a.derive(cand, nil, 0)
}

func (a *Array) MarshalJSON() ([]byte, error) { return j.Marshal(a.data) }

// relativeIndex clamps a possibly-negative offset into [0, n] the way the
// JavaScript array methods treat relative indexes.
func relativeIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}
