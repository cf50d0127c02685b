// Package windowmock provides a resettable fake of the browser window.
//
// A Mock holds a default window built once from its options. Setup activates
// the mock for a single test by cloning those defaults, so every test starts
// from the same state no matter what the previous one wrote. The live window,
// document, navigator and location objects are plain object.Objects and can be
// read and changed directly.
package windowmock

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/Maxwellism/browserfakes/object"
	"github.com/Maxwellism/browserfakes/storage"
	"go.uber.org/zap"
)

const (
	DefaultURL       = "http://localhost:4200/"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) browserfakes"
	DefaultHTML      = `<!DOCTYPE html><html lang="en"><head><title></title></head><body></body></html>`
)

type Dialog struct {
	Kind    string
	Message string
}

type Mock struct {
	mu       sync.Mutex
	defaults object.Object
	current  object.Object
	dialogs  []Dialog
	local    *storage.Storage
	session  *storage.Storage
	logger   *zap.Logger
}

type options struct {
	url        string
	html       string
	userAgent  string
	languages  []string
	platform   string
	width      int
	height     int
	pixelRatio float64
	logger     *zap.Logger
}

type Opt func(*options)

func WithURL(u string) Opt {
	return func(o *options) { o.url = u }
}

// WithHTML sets the markup the fake document is built from.
func WithHTML(src string) Opt {
	return func(o *options) { o.html = src }
}

func WithUserAgent(ua string) Opt {
	return func(o *options) { o.userAgent = ua }
}

func WithLanguages(langs ...string) Opt {
	return func(o *options) { o.languages = langs }
}

func WithPlatform(p string) Opt {
	return func(o *options) { o.platform = p }
}

func WithViewport(width, height int, pixelRatio float64) Opt {
	return func(o *options) {
		o.width = width
		o.height = height
		o.pixelRatio = pixelRatio
	}
}

func WithLogger(logger *zap.Logger) Opt {
	return func(o *options) { o.logger = logger }
}

// New builds the default window. It fails if the URL or HTML cannot be parsed.
func New(opts ...Opt) (*Mock, error) {
	o := options{
		url:        DefaultURL,
		html:       DefaultHTML,
		userAgent:  DefaultUserAgent,
		languages:  []string{"en-US", "en"},
		platform:   "Linux x86_64",
		width:      1024,
		height:     768,
		pixelRatio: 1,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(o.url)
	if err != nil {
		return nil, fmt.Errorf("windowmock: parse url %q: %w", o.url, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("windowmock: url %q is not absolute", o.url)
	}
	document, err := newDocument(o.html, u.String())
	if err != nil {
		return nil, err
	}

	m := &Mock{
		local:   storage.NewLocal(storage.WithLogger(o.logger)),
		session: storage.NewSession(storage.WithLogger(o.logger)),
		logger:  o.logger.Named("windowmock"),
	}
	languages := make([]any, len(o.languages))
	for i, l := range o.languages {
		languages[i] = l
	}
	language := ""
	if len(o.languages) > 0 {
		language = o.languages[0]
	}
	m.defaults = object.Object{
		"location": newLocation(u),
		"document": document,
		"navigator": object.Object{
			"userAgent":     o.userAgent,
			"language":      language,
			"languages":     languages,
			"platform":      o.platform,
			"vendor":        "",
			"onLine":        true,
			"cookieEnabled": true,
		},
		"innerWidth":       o.width,
		"innerHeight":      o.height,
		"outerWidth":       o.width,
		"outerHeight":      o.height,
		"devicePixelRatio": o.pixelRatio,
		"screen": object.Object{
			"width":       o.width,
			"height":      o.height,
			"availWidth":  o.width,
			"availHeight": o.height,
		},
		"scrollX": 0,
		"scrollY": 0,
		"name":    "",
	}
	return m, nil
}

// Setup activates the mock: the current window becomes a fresh copy of the
// defaults. The mock keeps one local and one session store for its whole
// life; Setup empties them and clears injected errors.
func (m *Mock) Setup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := object.Clone(m.defaults)
	m.local.Reset()
	m.session.Reset()
	w["localStorage"] = m.local
	w["sessionStorage"] = m.session
	w["alert"] = func(message string) {
		m.record("alert", message)
	}
	w["confirm"] = func(message string) bool {
		m.record("confirm", message)
		return true
	}
	w["prompt"] = func(message, defaultValue string) string {
		m.record("prompt", message)
		return defaultValue
	}
	w["scrollTo"] = func(x, y float64) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.current == nil {
			return
		}
		m.current["scrollX"] = x
		m.current["scrollY"] = y
	}
	m.current = w
	m.dialogs = nil
	m.logger.Debug("setup")
}

// Teardown deactivates the mock. Accessors return nil until the next Setup.
func (m *Mock) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.logger.Debug("teardown")
}

// Reset is Teardown followed by Setup.
func (m *Mock) Reset() {
	m.Teardown()
	m.Setup()
}

func (m *Mock) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

func (m *Mock) Window() object.Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Mock) Document() object.Object  { return m.child("document") }
func (m *Mock) Navigator() object.Object { return m.child("navigator") }
func (m *Mock) Location() object.Object  { return m.child("location") }

func (m *Mock) LocalStorage() *storage.Storage {
	s, _ := m.Window()["localStorage"].(*storage.Storage)
	return s
}

func (m *Mock) SessionStorage() *storage.Storage {
	s, _ := m.Window()["sessionStorage"].(*storage.Storage)
	return s
}

// Storage returns the store of the given kind whether or not the mock is
// active.
func (m *Mock) Storage(kind storage.Kind) *storage.Storage {
	if kind == storage.Session {
		return m.session
	}
	return m.local
}

// Dialogs returns the alert, confirm and prompt calls since Setup.
func (m *Mock) Dialogs() []Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Dialog(nil), m.dialogs...)
}

func (m *Mock) child(key string) object.Object {
	o, _ := object.AsObject(m.Window()[key])
	return o
}

func (m *Mock) record(kind, message string) {
	m.mu.Lock()
	m.dialogs = append(m.dialogs, Dialog{Kind: kind, Message: message})
	m.mu.Unlock()
	m.logger.Info("[JS "+kind+"]", zap.String("message", message))
}
