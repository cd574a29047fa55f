package mailer

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	texttemplate "text/template"
)

// Renderer executes email bodies from an fs.FS: *.html files through
// html/template (auto-escaped) and *.txt files through text/template.
// Templates are parsed once; the Renderer is safe for concurrent use.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewRenderer parses every *.html and *.txt file at the root of fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{
		html: htmltemplate.New(""),
		text: texttemplate.New(""),
	}

	if matches, err := fs.Glob(fsys, "*.html"); err != nil {
		return nil, err
	} else if len(matches) > 0 {
		if r.html, err = r.html.ParseFS(fsys, "*.html"); err != nil {
			return nil, fmt.Errorf("parse html templates: %w", err)
		}
	}

	if matches, err := fs.Glob(fsys, "*.txt"); err != nil {
		return nil, err
	} else if len(matches) > 0 {
		if r.text, err = r.text.ParseFS(fsys, "*.txt"); err != nil {
			return nil, fmt.Errorf("parse text templates: %w", err)
		}
	}

	return r, nil
}

// HTML renders the named html template.
func (r *Renderer) HTML(name string, data any) (string, error) {
	t := r.html.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// Text renders the named text template.
func (r *Renderer) Text(name string, data any) (string, error) {
	t := r.text.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
