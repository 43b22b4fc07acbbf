package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

// Extractor walks a symbol dump and collects the public API of public types.
type Extractor struct {
	rules     Rules
	typeKinds map[string]struct{}
	logger    *zap.Logger
}

// New creates an extractor for the given rules.
func New(rules Rules, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	kinds := make(map[string]struct{}, len(rules.TypeKinds))
	for _, k := range rules.TypeKinds {
		kinds[k] = struct{}{}
	}
	return &Extractor{rules: rules, typeKinds: kinds, logger: logger}
}

// ExtractFile reads a symbol dump from disk and extracts its public API.
func (e *Extractor) ExtractFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	report, err := e.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return report, nil
}

// Extract walks the JSON document depth-first and returns the grouped report.
// The result is never nil.
func (e *Extractor) Extract(data []byte) (Report, error) {
	if !json.Valid(data) {
		return nil, errors.New("symbol dump is not valid JSON")
	}
	root, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}

	buckets := orderedmap.New[string, []FunctionRecord]()
	if err := e.walk(root, typ, "", buckets); err != nil {
		return nil, err
	}

	report := make(Report, 0, buckets.Len())
	for pair := buckets.Oldest(); pair != nil; pair = pair.Next() {
		report = append(report, ReportEntry{ClassName: pair.Key, APIFunctions: pair.Value})
	}
	e.logger.Debug("Extraction finished", zap.Int("types", len(report)))
	return report, nil
}

// walk visits one node. scope is the name of the nearest enclosing public
// type, empty when there is none. It is passed by value so siblings never
// see each other's scope.
func (e *Extractor) walk(data []byte, typ jsonparser.ValueType, scope string, buckets *orderedmap.OrderedMap[string, []FunctionRecord]) error {
	switch typ {
	case jsonparser.Object:
		return e.walkObject(data, scope, buckets)
	case jsonparser.Array:
		var walkErr error
		_, err := jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
			if walkErr != nil {
				return
			}
			if err != nil {
				walkErr = err
				return
			}
			walkErr = e.walk(value, vt, scope, buckets)
		})
		if walkErr != nil {
			return walkErr
		}
		return err
	default:
		return nil
	}
}

func (e *Extractor) walkObject(data []byte, scope string, buckets *orderedmap.OrderedMap[string, []FunctionRecord]) error {
	var decl declaration
	var children []field

	err := jsonparser.ObjectEach(data, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		name := string(key) // already unescaped
		f := field{value: value, typ: vt}
		if name == e.rules.KindKey {
			decl.kind = f
		}
		if name == e.rules.AccessibilityKey {
			decl.accessibility = f
		}
		if name == e.rules.NameKey {
			decl.name = f
		}
		if name == e.rules.DeclarationKey {
			decl.declaration = f
		}
		if vt == jsonparser.Object || vt == jsonparser.Array {
			children = append(children, f)
		}
		return nil
	})
	if err != nil {
		return err
	}

	kind, hasKind := decl.kind.str()
	public := decl.isPublic(e.rules.PublicAccessibility)

	if hasKind {
		if _, ok := e.typeKinds[kind]; ok {
			// A non-public type clears any scope inherited from its parents.
			scope = ""
			if public {
				scope = decl.name.or(e.rules.UnnamedContext)
				e.logger.Debug("Entering public type", zap.String("name", scope), zap.String("kind", kind))
			}
		}
	}

	if scope != "" && hasKind && public && strings.HasPrefix(kind, e.rules.FunctionKindPrefix) {
		record := FunctionRecord{
			Name:        decl.name.or(e.rules.UnnamedFunction),
			Declaration: decl.declaration.or(e.rules.UnknownDeclaration),
		}
		records, _ := buckets.Get(scope)
		buckets.Set(scope, append(records, record))
		e.logger.Debug("Captured public function", zap.String("type", scope), zap.String("name", record.Name))
	}

	for _, child := range children {
		if err := e.walk(child.value, child.typ, scope, buckets); err != nil {
			return err
		}
	}
	return nil
}

// declaration holds the fields of an object node the rules look at.
type declaration struct {
	kind          field
	accessibility field
	name          field
	declaration   field
}

func (d declaration) isPublic(public string) bool {
	access, ok := d.accessibility.str()
	return ok && access == public
}

// field is a raw JSON value. The zero value is an absent field.
type field struct {
	value []byte
	typ   jsonparser.ValueType
}

// str returns the decoded value if the field holds a JSON string.
func (f field) str() (string, bool) {
	if f.typ != jsonparser.String {
		return "", false
	}
	s, err := jsonparser.ParseString(f.value)
	if err != nil {
		return "", false
	}
	return s, true
}

// or returns the field as text, or fallback when it is absent or null.
// Non-string values are rendered as their raw JSON text.
func (f field) or(fallback string) string {
	switch f.typ {
	case jsonparser.NotExist, jsonparser.Null:
		return fallback
	case jsonparser.String:
		s, _ := f.str()
		return s
	default:
		return string(f.value)
	}
}
