// internal/form/definition.go
//
// Formguard – Forms subsystem: YAML definition loader.
//
// Context
//   Each form is declared in a YAML file.  The file names the form, its
//   fields and their kinds, the ordered validation rules, and the actions
//   to run once a submission is accepted.  Definitions are parsed into a
//   FormDef, structurally validated, compiled into []Rule, and held in a
//   Registry value that callers pass to whatever needs it.  There is no
//   process-wide registry.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → FieldDef → RuleDef, plus
//      form-level RuleDefs and ActionDefs.
//   •  ParseFormDef decodes and validates one document.  LoadFormDef reads
//      it from disk first.
//   •  Registry.LoadFS walks an fs.FS (embedded defaults or os.DirFS) and
//      adds every “*.yaml” it finds.  A later Add of the same ID replaces
//      the earlier one, so load defaults first and overrides last.
//
// Rule order
//   Field rules run in field declaration order, each field's rules in the
//   order written.  Form-level rules run after every field rule.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/formguard/internal/cache"
	"github.com/yanizio/formguard/internal/routing"
)

// Rule type names accepted in YAML.
const (
	RuleRequired  = "required"
	RulePattern   = "pattern"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minlength"
	RuleMaxLength = "maxlength"
	RuleEquals    = "equals"
	RuleChecked   = "checked"
	RuleOneOf     = "oneof"
)

// ErrUnknownForm is returned when a form ID is not registered.
var ErrUnknownForm = errors.New("unknown form")

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID      string      `yaml:"id"      validate:"required,max=64,slug"`
	Title   string      `yaml:"title"`
	Fields  []FieldDef  `yaml:"fields"  validate:"required,min=1,dive"`
	Rules   []RuleDef   `yaml:"rules"   validate:"dive"` // Form-level rules, after field rules.
	Actions []ActionDef `yaml:"actions" validate:"dive"` // Run on accept.  May be empty.

	compiled []Rule
}

// FieldDef describes a single input on the form.
type FieldDef struct {
	Name        string    `yaml:"name"        validate:"required"`
	Label       string    `yaml:"label"`
	Kind        Kind      `yaml:"kind"        validate:"required,oneof=text textarea email number password checkbox"`
	Placeholder string    `yaml:"placeholder"`
	Rules       []RuleDef `yaml:"rules"       validate:"dive"`
}

// RuleDef is the YAML form of a Rule.  Which parameters apply depends on
// Type; see compileRule.
type RuleDef struct {
	Type     string   `yaml:"type"     validate:"required,oneof=required pattern min max minlength maxlength equals checked oneof"`
	Field    string   `yaml:"field"`    // Subject of a form-level rule.  Implied on field rules.
	Fields   []string `yaml:"fields"`   // required: every listed field.
	Pattern  string   `yaml:"pattern"`  // pattern: single expression.
	Patterns []string `yaml:"patterns"` // pattern: all must match.
	Value    *float64 `yaml:"value"`    // min, max, minlength, maxlength.
	Other    string   `yaml:"other"`    // equals: the field compared against.
	Options  []string `yaml:"options"`  // oneof.
	Message  string   `yaml:"message"`
}

// ActionDef configures a downstream action run after acceptance.  Params
// are kept loose so new action kinds need no schema change.
type ActionDef struct {
	Type   string         `yaml:"type"    validate:"required"`
	Params map[string]any `yaml:",inline"`
}

// Field returns the named FieldDef.
func (fd *FormDef) Field(name string) (*FieldDef, bool) {
	for i := range fd.Fields {
		if fd.Fields[i].Name == name {
			return &fd.Fields[i], true
		}
	}
	return nil, false
}

// CompiledRules returns the ordered rules for fd.  The slice is a copy.
func (fd *FormDef) CompiledRules() []Rule { return slices.Clone(fd.compiled) }

// Public returns v without password fields, for logs and outbound payloads.
func (fd *FormDef) Public(v Values) map[string]any {
	out := make(map[string]any, len(v))
	for k, val := range v {
		if f, ok := fd.Field(k); ok && f.Kind == KindPassword {
			continue
		}
		out[k] = val
	}
	return out
}

// RequiredField reports whether name is covered by a required or checked
// rule.  The renderer uses it for the HTML “required” hint.
func (fd *FormDef) RequiredField(name string) bool {
	for _, r := range fd.compiled {
		if r.Field == name && (r.Type == RuleRequired || r.Type == RuleChecked) {
			return true
		}
	}
	for _, rd := range fd.Rules {
		if rd.Type == RuleRequired && slices.Contains(rd.Fields, name) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

// patternCacheSize bounds the compiled-regexp cache shared by a Registry.
const patternCacheSize = 256

// Registry holds compiled form definitions by ID.  Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	forms    map[string]*FormDef
	patterns *cache.LRU[string, *regexp.Regexp]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		forms:    make(map[string]*FormDef),
		patterns: cache.New[string, *regexp.Regexp](patternCacheSize),
	}
}

// Add validates and compiles fd, then stores it, replacing any previous
// definition with the same ID.
func (r *Registry) Add(fd *FormDef) error {
	if err := validateFormDef(fd, fd.ID); err != nil {
		return err
	}
	rules, err := compileRules(fd, r.compilePattern)
	if err != nil {
		return err
	}
	fd.compiled = rules

	r.mu.Lock()
	r.forms[fd.ID] = fd
	r.mu.Unlock()
	return nil
}

// Get returns a FormDef by ID.  The boolean is false when the ID is unknown.
func (r *Registry) Get(id string) (*FormDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fd, ok := r.forms[id]
	return fd, ok
}

// Lookup is Get with an error for unknown IDs.
func (r *Registry) Lookup(id string) (*FormDef, error) {
	if fd, ok := r.Get(id); ok {
		return fd, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownForm, id)
}

// All returns every definition sorted by ID.
func (r *Registry) All() []*FormDef {
	r.mu.RLock()
	out := make([]*FormDef, 0, len(r.forms))
	for _, fd := range r.forms {
		out = append(out, fd)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports how many forms are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// LoadFS walks root inside fsys and adds every “*.yaml” or “*.yml” file.
// It fails fast on the first bad definition so issues surface loudly.  A
// missing root is not an error.
func (r *Registry) LoadFS(fsys fs.FS, root string) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read form file %s: %w", p, err)
		}
		fd, err := ParseFormDef(raw, p)
		if err != nil {
			return err
		}
		if err := r.Add(fd); err != nil {
			return fmt.Errorf("form definition %s: %w", p, err)
		}
		n++
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return n, err
	}
	return n, nil
}

// LoadDir is LoadFS over a directory on disk.
func (r *Registry) LoadDir(dir string) (int, error) {
	return r.LoadFS(os.DirFS(dir), ".")
}

func (r *Registry) compilePattern(expr string) (*regexp.Regexp, error) {
	return r.patterns.GetOrAdd(expr, func() (*regexp.Regexp, error) {
		return regexp.Compile(expr)
	})
}

func isYAML(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef decodes one YAML document.  src names the document in
// errors.  Unknown keys are rejected so typos do not silently drop rules.
// The result is validated but not compiled; use Registry.Add.
func ParseFormDef(raw []byte, src string) (*FormDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var fd FormDef
	if err := dec.Decode(&fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", src, err)
	}
	if err := validateFormDef(&fd, src); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadFormDef reads and parses one YAML file.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseFormDef(raw, path)
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var validate = newValidator()

// newValidator adds the "slug" tag: form IDs appear in URLs, so they must
// already be in the lower-kebab form routing.MakeSlug produces.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && routing.MakeSlug(s) == s
	})
	return v
}

// validateFormDef enforces tag rules plus the cross-references tags cannot
// express.
func validateFormDef(fd *FormDef, src string) error {
	if err := validate.Struct(fd); err != nil {
		return fmt.Errorf("form definition %s: %w", src, err)
	}

	names := make(map[string]Kind, len(fd.Fields))
	for _, f := range fd.Fields {
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("form definition %s: duplicate field name '%s'", src, f.Name)
		}
		names[f.Name] = f.Kind
	}

	for _, f := range fd.Fields {
		for _, rd := range f.Rules {
			if err := checkRuleDef(rd, f.Name, names); err != nil {
				return fmt.Errorf("form definition %s: field '%s': %w", src, f.Name, err)
			}
		}
	}
	for i, rd := range fd.Rules {
		if err := checkRuleDef(rd, "", names); err != nil {
			return fmt.Errorf("form definition %s: rule %d: %w", src, i+1, err)
		}
	}

	for _, ac := range fd.Actions {
		if !knownActions[ac.Type] {
			return fmt.Errorf("form definition %s: unrecognized action type '%s'", src, ac.Type)
		}
	}
	return nil
}

// checkRuleDef validates parameters for one rule.  owner is empty for
// form-level rules.
func checkRuleDef(rd RuleDef, owner string, names map[string]Kind) error {
	known := func(n string) error {
		if _, ok := names[n]; !ok {
			return fmt.Errorf("%s rule references unknown field '%s'", rd.Type, n)
		}
		return nil
	}

	subject := subjectOf(rd, owner)
	if rd.Type == RuleRequired {
		fields := requiredFields(rd, owner)
		if len(fields) == 0 {
			return errors.New("required rule needs 'fields'")
		}
		for _, n := range fields {
			if err := known(n); err != nil {
				return err
			}
		}
		return nil
	}

	if subject == "" {
		return fmt.Errorf("%s rule needs 'field'", rd.Type)
	}
	if err := known(subject); err != nil {
		return err
	}

	switch rd.Type {
	case RulePattern:
		if len(patternsOf(rd)) == 0 {
			return errors.New("pattern rule needs 'pattern' or 'patterns'")
		}
		for _, p := range patternsOf(rd) {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("invalid regex pattern: %v", err)
			}
		}
	case RuleMin, RuleMax:
		if rd.Value == nil {
			return fmt.Errorf("%s rule needs 'value'", rd.Type)
		}
	case RuleMinLength, RuleMaxLength:
		if rd.Value == nil || *rd.Value < 0 {
			return fmt.Errorf("%s rule needs a non-negative 'value'", rd.Type)
		}
	case RuleEquals:
		if rd.Other == "" {
			return errors.New("equals rule needs 'other'")
		}
		if err := known(rd.Other); err != nil {
			return err
		}
	case RuleChecked:
		if names[subject] != KindCheckbox {
			return fmt.Errorf("checked rule on non-checkbox field '%s'", subject)
		}
	case RuleOneOf:
		if len(rd.Options) == 0 {
			return errors.New("oneof rule needs 'options'")
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Compilation
// -----------------------------------------------------------------------------

func compileRules(fd *FormDef, compile func(string) (*regexp.Regexp, error)) ([]Rule, error) {
	var out []Rule
	for _, f := range fd.Fields {
		for _, rd := range f.Rules {
			r, err := compileRule(rd, f.Name, compile)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	for _, rd := range fd.Rules {
		r, err := compileRule(rd, "", compile)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func compileRule(rd RuleDef, owner string, compile func(string) (*regexp.Regexp, error)) (Rule, error) {
	subject := subjectOf(rd, owner)
	msg := rd.Message
	if msg == "" {
		msg = defaultMessage(rd.Type)
	}

	switch rd.Type {
	case RuleRequired:
		r := Required(msg, requiredFields(rd, owner)...)
		if owner != "" {
			r.Field = owner
		}
		return r, nil
	case RulePattern:
		var res []*regexp.Regexp
		for _, p := range patternsOf(rd) {
			re, err := compile(p)
			if err != nil {
				return Rule{}, fmt.Errorf("field '%s': invalid regex pattern: %w", subject, err)
			}
			res = append(res, re)
		}
		return Pattern(subject, msg, res...), nil
	case RuleMin:
		return Min(subject, *rd.Value, msg), nil
	case RuleMax:
		return Max(subject, *rd.Value, msg), nil
	case RuleMinLength:
		return MinLength(subject, int(*rd.Value), msg), nil
	case RuleMaxLength:
		return MaxLength(subject, int(*rd.Value), msg), nil
	case RuleEquals:
		return Equals(subject, rd.Other, msg), nil
	case RuleChecked:
		return Checked(subject, msg), nil
	case RuleOneOf:
		return OneOf(subject, rd.Options, msg), nil
	default:
		return Rule{}, fmt.Errorf("unsupported rule type %q", rd.Type)
	}
}

func subjectOf(rd RuleDef, owner string) string {
	if owner != "" {
		return owner
	}
	return rd.Field
}

func requiredFields(rd RuleDef, owner string) []string {
	if len(rd.Fields) > 0 {
		return rd.Fields
	}
	if s := subjectOf(rd, owner); s != "" {
		return []string{s}
	}
	return nil
}

func patternsOf(rd RuleDef) []string {
	if rd.Pattern == "" {
		return rd.Patterns
	}
	return append([]string{rd.Pattern}, rd.Patterns...)
}

// user-friendly default messages
func defaultMessage(typ string) string {
	switch typ {
	case RuleRequired:
		return "This field is required."
	case RulePattern:
		return "Input does not match required format."
	case RuleChecked:
		return "This box must be checked."
	case RuleEquals:
		return "Fields do not match."
	default:
		return "Invalid input."
	}
}
