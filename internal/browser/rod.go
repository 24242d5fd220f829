package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// DefaultPageLoadTimeout bounds a single navigation.
	DefaultPageLoadTimeout = 40 * time.Second

	// DefaultClickTimeout bounds clicks and option selection.
	DefaultClickTimeout = 5 * time.Second

	// heightScript reads the rendered height of the element it is called on.
	heightScript = `() => this.getBoundingClientRect().height`
)

// RodOptions configures a RodSession.
type RodOptions struct {
	// Headless hides the browser window.
	Headless bool

	// Bin is the Chrome executable. Empty lets the launcher find or
	// download one.
	Bin string

	// RemoteURL is the DevTools websocket URL of an already running browser.
	// When set, no local browser is launched.
	RemoteURL string

	// UserAgent overrides the browser user agent when not empty.
	UserAgent string

	// PageLoadTimeout bounds each navigation. Zero uses DefaultPageLoadTimeout.
	PageLoadTimeout time.Duration

	// ClickTimeout bounds clicks and selections. Zero uses DefaultClickTimeout.
	ClickTimeout time.Duration
}

// RodSession is a Session backed by a Chrome tab driven over the DevTools
// protocol.
type RodSession struct {
	launcher     *launcher.Launcher
	browser      *rod.Browser
	page         *rod.Page
	loadTimeout  time.Duration
	clickTimeout time.Duration
}

var _ Session = (*RodSession)(nil)

// NewRodSession launches (or connects to) a browser and opens one blank tab.
// The caller must Close the session.
func NewRodSession(ctx context.Context, opts RodOptions) (*RodSession, error) {
	s := &RodSession{
		loadTimeout:  opts.PageLoadTimeout,
		clickTimeout: opts.ClickTimeout,
	}
	if s.loadTimeout <= 0 {
		s.loadTimeout = DefaultPageLoadTimeout
	}
	if s.clickTimeout <= 0 {
		s.clickTimeout = DefaultClickTimeout
	}

	controlURL := opts.RemoteURL
	if controlURL == "" {
		l := launcher.New().
			Headless(opts.Headless).
			NoSandbox(true).
			Set("disable-gpu").
			Set("disable-dev-shm-usage").
			Set("window-size", "1920,1080")
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		s.launcher = l
		controlURL = u
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.killLauncher()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	s.page = page

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	return s, nil
}

// Navigate loads url and waits for the load event.
func (s *RodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx).Timeout(s.loadTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// Find returns the first element matching selector.
func (s *RodSession) Find(ctx context.Context, selector string) (Element, error) {
	el, found, err := s.Lookup(ctx, selector)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return el, nil
}

// FindAll returns all elements matching selector.
func (s *RodSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	return s.wrap(els), nil
}

// Lookup returns the first element matching selector if there is one.
func (s *RodSession) Lookup(ctx context.Context, selector string) (Element, bool, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if !has {
		return nil, false, nil
	}
	return &rodElement{el: el, clickTimeout: s.clickTimeout}, true, nil
}

// SelectOption selects the option with the given value attribute.
func (s *RodSession) SelectOption(ctx context.Context, selector, value string) error {
	el, err := s.Find(ctx, selector)
	if err != nil {
		return err
	}
	re, ok := el.(*rodElement)
	if !ok {
		return fmt.Errorf("unexpected element type %T", el)
	}

	sel := re.el.Context(ctx).Timeout(s.clickTimeout)
	defer sel.CancelTimeout()

	option := fmt.Sprintf(`[value=%q]`, value)
	if err := sel.Select([]string{option}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("failed to select %s in %s: %w", value, selector, err)
	}
	return nil
}

// Close closes the tab and the browser and stops a launched browser process.
func (s *RodSession) Close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.browser = nil
	}
	s.killLauncher()
	return errors.Join(errs...)
}

func (s *RodSession) killLauncher() {
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.launcher = nil
	}
}

func (s *RodSession) wrap(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el, clickTimeout: s.clickTimeout})
	}
	return out
}

// rodElement adapts *rod.Element to Element.
type rodElement struct {
	el           *rod.Element
	clickTimeout time.Duration
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return text, nil
}

func (e *rodElement) Attr(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("failed to read attribute %s: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) Find(ctx context.Context, selector string) (Element, error) {
	el, found, err := e.Lookup(ctx, selector)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return el, nil
}

func (e *rodElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el, clickTimeout: e.clickTimeout})
	}
	return out, nil
}

func (e *rodElement) Lookup(ctx context.Context, selector string) (Element, bool, error) {
	has, el, err := e.el.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if !has {
		return nil, false, nil
	}
	return &rodElement{el: el, clickTimeout: e.clickTimeout}, true, nil
}

func (e *rodElement) Height(ctx context.Context) (float64, error) {
	obj, err := e.el.Context(ctx).Eval(heightScript)
	if err != nil {
		return 0, fmt.Errorf("failed to read height: %w", err)
	}
	return obj.Value.Num(), nil
}

func (e *rodElement) ScrollIntoView(ctx context.Context) error {
	if err := e.el.Context(ctx).ScrollIntoView(); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (e *rodElement) Click(ctx context.Context) error {
	el := e.el.Context(ctx).Timeout(e.clickTimeout)
	defer el.CancelTimeout()

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click: %w", err)
	}
	return nil
}
