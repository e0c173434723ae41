// internal/form/renderer.go
//
// Formguard – Forms subsystem: HTML renderer.
//
// Context
//   Given a FormDef this file writes plain, accessible HTML for it.  The
//   form posts back to itself with `novalidate` so the server-side guard,
//   not the browser, decides acceptance.  After a rejection the page is
//   rendered again with the guard's message and the user's values, except
//   passwords, which are never echoed.
//
// Style
//   Output HTML is deliberately plain so themes can style via element
//   selectors.  Each input gets id="fld-{name}" and is wrapped in
//   <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"

	"github.com/yanizio/formguard/internal/routing"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	Action  string            // Form action URL.  Default "/forms/{id}".
	Token   string            // CSRF token; omitted when empty.
	Message string            // Rejection message shown above the fields.
	Prefill map[string]string // Previously entered raw values.
}

// Render returns the HTML markup for fd.
func Render(fd *FormDef, opts RenderOptions) (template.HTML, error) {
	action := opts.Action
	if action == "" {
		action = routing.BuildPath("forms", fd.ID)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<form class="formguard" id="form-%s" method="post" action="%s" novalidate>`+"\n",
		html.EscapeString(fd.ID), html.EscapeString(action))
	if fd.Title != "" {
		buf.WriteString(`<h2>` + html.EscapeString(fd.Title) + `</h2>` + "\n")
	}
	if opts.Message != "" {
		buf.WriteString(`<p class="form-error" role="alert">` + html.EscapeString(opts.Message) + `</p>` + "\n")
	}

	for i := range fd.Fields {
		if err := writeField(&buf, fd, &fd.Fields[i], opts.Prefill); err != nil {
			return "", err
		}
	}

	if opts.Token != "" {
		fmt.Fprintf(&buf, `<input type="hidden" name="csrf_token" value="%s">`+"\n", html.EscapeString(opts.Token))
	}
	buf.WriteString(`<button type="submit">Submit</button>` + "\n")
	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for one field.
func writeField(buf *bytes.Buffer, fd *FormDef, f *FieldDef, prefill map[string]string) error {
	name := html.EscapeString(f.Name)
	val := prefill[f.Name]
	label := f.Label
	if label == "" {
		label = f.Name
	}

	required := ""
	if fd.RequiredField(f.Name) {
		required = ` required`
	}
	placeholder := ""
	if f.Placeholder != "" {
		placeholder = ` placeholder="` + html.EscapeString(f.Placeholder) + `"`
	}

	buf.WriteString(`<div class="form-field">` + "\n")

	switch f.Kind {
	case KindText, KindEmail, KindNumber, KindPassword:
		buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(label) + `</label>` + "\n")
		buf.WriteString(`<input id="fld-` + name + `" name="` + name + `" type="` + string(f.Kind) + `"` + placeholder + required)
		if val != "" && f.Kind != KindPassword {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case KindTextarea:
		buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(label) + `</label>` + "\n")
		buf.WriteString(`<textarea id="fld-` + name + `" name="` + name + `"` + placeholder + required + `>`)
		buf.WriteString(html.EscapeString(val))
		buf.WriteString(`</textarea>` + "\n")

	case KindCheckbox:
		checked := ""
		if checkboxOn(val) {
			checked = ` checked`
		}
		buf.WriteString(`<label><input id="fld-` + name + `" name="` + name + `" type="checkbox"` + checked + required + `> `)
		buf.WriteString(html.EscapeString(label) + `</label>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field kind %q in form field %s", f.Kind, f.Name)
	}

	buf.WriteString(`</div>` + "\n")
	return nil
}
