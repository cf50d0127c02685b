// Package script compiles test scripts written in TypeScript into JavaScript
// the embedded runtimes can evaluate.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var ErrTransform = errors.New("script: transform failed")

type transformOpts struct {
	loader     api.Loader
	target     api.Target
	sourcefile string
}

type Opt func(*transformOpts)

// WithTarget sets the ECMAScript version of the output. goja wants ES2015 or
// lower for some syntax; QuickJS handles ES2020.
func WithTarget(target api.Target) Opt {
	return func(o *transformOpts) { o.target = target }
}

func WithLoader(loader api.Loader) Opt {
	return func(o *transformOpts) { o.loader = loader }
}

// WithSourcefile names the input in error messages.
func WithSourcefile(name string) Opt {
	return func(o *transformOpts) { o.sourcefile = name }
}

// Transform compiles src, by default as TypeScript targeting ES2020.
func Transform(src string, opts ...Opt) (string, error) {
	o := transformOpts{
		loader:     api.LoaderTS,
		target:     api.ES2020,
		sourcefile: "<script>",
	}
	for _, opt := range opts {
		opt(&o)
	}
	result := api.Transform(src, api.TransformOptions{
		Loader:     o.loader,
		Target:     o.target,
		Sourcefile: o.sourcefile,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("%w: %s", ErrTransform, formatMessages(result.Errors))
	}
	return string(result.Code), nil
}

func formatMessages(msgs []api.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("; ")
		}
		if m.Location != nil {
			fmt.Fprintf(&b, "%s:%d:%d: ", m.Location.File, m.Location.Line, m.Location.Column)
		}
		b.WriteString(m.Text)
	}
	return b.String()
}
