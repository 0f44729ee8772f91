package scraper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pfrederiksen/tm-roles/internal/agenda"
	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/parser"
)

const (
	DefaultSiteURL   = "https://hobart.toastmastersclubs.org"
	DefaultAgendaURL = DefaultSiteURL + "/agenda.html"
	Timeout          = 30 * time.Second
	SettleDelay      = time.Second

	loginButtonSelector  = "#adminlogin"
	clubNumberSelector   = "#clubnumber"
	passwordSelector     = "#password"
	agendaSelectSelector = "#GotoAgenda"
	meetingAgendaID      = "#MeetingAgenda"
)

// ErrMissingCredentials means the club number or password is not configured
var ErrMissingCredentials = errors.New("club number and password are required")

// Config controls the browser session
type Config struct {
	SiteURL    string        `yaml:"site_url"`
	AgendaURL  string        `yaml:"agenda_url"`
	ClubNumber string        `yaml:"club_number"`
	Password   string        `yaml:"-"`
	Headless   bool          `yaml:"headless"`
	BrowserBin string        `yaml:"browser_bin"`
	Timeout    time.Duration `yaml:"timeout"`
	Settle     time.Duration `yaml:"settle"`
}

// DefaultConfig returns a headless session against the club site
func DefaultConfig() Config {
	return Config{
		SiteURL:   DefaultSiteURL,
		AgendaURL: DefaultAgendaURL,
		Headless:  true,
		Timeout:   Timeout,
		Settle:    SettleDelay,
	}
}

// FetchResult holds the agendas collected by one run and a human-readable log
type FetchResult struct {
	Agendas []*agenda.Agenda
	Log     []string
}

func (r *FetchResult) logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Log = append(r.Log, msg)
	logger.Info(msg, logger.Fields{"component": "scraper"})
}

// Scraper fetches agendas from the club site
type Scraper struct {
	cfg Config
}

// New creates a Scraper, filling unset config fields with defaults
func New(cfg Config) *Scraper {
	def := DefaultConfig()
	if cfg.SiteURL == "" {
		cfg.SiteURL = def.SiteURL
	}
	if cfg.AgendaURL == "" {
		cfg.AgendaURL = strings.TrimRight(cfg.SiteURL, "/") + "/agenda.html"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	return &Scraper{cfg: cfg}
}

// FetchAgendas logs in and collects every agenda dated on or before target.
// members is the known roster used to resolve abbreviated names.
// The returned result carries the log even when an error is returned.
func (s *Scraper) FetchAgendas(ctx context.Context, target time.Time, members []string) (*FetchResult, error) {
	result := &FetchResult{Agendas: make([]*agenda.Agenda, 0)}

	if s.cfg.ClubNumber == "" || s.cfg.Password == "" {
		return result, ErrMissingCredentials
	}

	l := launcher.New().Headless(s.cfg.Headless).
		Set("disable-gpu").
		Set("window-size", "1200,800")
	if s.cfg.BrowserBin != "" {
		l = l.Bin(s.cfg.BrowserBin)
	}
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return result, fmt.Errorf("launching browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return result, fmt.Errorf("connecting to browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
		result.logf("Closed browser.")
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return result, fmt.Errorf("opening page: %w", err)
	}

	if err := s.login(page, result); err != nil {
		return result, fmt.Errorf("logging in: %w", err)
	}

	if err := s.collect(ctx, page, target, members, result); err != nil {
		return result, fmt.Errorf("fetching agendas: %w", err)
	}
	return result, nil
}

func (s *Scraper) login(page *rod.Page, result *FetchResult) error {
	result.logf("Logging in...")
	p := page.Timeout(s.cfg.Timeout)

	if err := p.Navigate(s.cfg.SiteURL); err != nil {
		return fmt.Errorf("opening site: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for site: %w", err)
	}

	btn, err := p.Element(loginButtonSelector)
	if err != nil {
		return fmt.Errorf("finding login button: %w", err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("opening login form: %w", err)
	}

	club, err := p.Element(clubNumberSelector)
	if err != nil {
		return fmt.Errorf("finding club number field: %w", err)
	}
	if err := club.WaitVisible(); err != nil {
		return fmt.Errorf("waiting for login form: %w", err)
	}
	if err := club.Input(s.cfg.ClubNumber); err != nil {
		return fmt.Errorf("entering club number: %w", err)
	}

	pw, err := p.Element(passwordSelector)
	if err != nil {
		return fmt.Errorf("finding password field: %w", err)
	}
	if err := pw.Input(s.cfg.Password); err != nil {
		return fmt.Errorf("entering password: %w", err)
	}

	submit, err := p.ElementR("button", "^\\s*Login\\s*$")
	if err != nil {
		return fmt.Errorf("finding submit button: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("submitting login: %w", err)
	}

	// The cookie prompt only shows on some sessions.
	if keep, err := page.Timeout(5*time.Second).ElementR("button", "Keep These and Close"); err == nil {
		if err := keep.Click(proto.InputMouseButtonLeft, 1); err != nil {
			result.logf("Could not dismiss cookie prompt: %v", err)
		}
	} else {
		result.logf("No cookie prompt.")
	}

	result.logf("Login successful.")
	return nil
}

func (s *Scraper) collect(ctx context.Context, page *rod.Page, target time.Time, members []string, result *FetchResult) error {
	result.logf("Fetching agendas up to %s", target.Format(agenda.DateLayout))
	p := page.Timeout(s.cfg.Timeout)

	if err := p.Navigate(s.cfg.AgendaURL); err != nil {
		return fmt.Errorf("opening agenda page: %w", err)
	}
	if _, err := p.Element(agendaSelectSelector); err != nil {
		return fmt.Errorf("waiting for agenda dropdown: %w", err)
	}

	raw, err := readOptions(p)
	if err != nil {
		return err
	}
	options, warnings := selectOptions(raw, target)
	for _, w := range warnings {
		result.logf("%s", w)
	}

	prs := parser.New(members)
	for _, opt := range options {
		dateKey := opt.Date.Format(agenda.DateLayout)
		result.logf("Loading agenda for %s", dateKey)

		html, err := s.loadAgenda(ctx, page, opt.Value)
		if err != nil {
			return fmt.Errorf("loading agenda %s: %w", dateKey, err)
		}

		parsed, err := prs.Parse(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parsing agenda %s: %w", dateKey, err)
		}
		for _, skipped := range parsed.Skipped {
			result.logf("Skipping %s", skipped)
		}
		result.logf("Parsed %d roles for meeting %s", len(parsed.Entries), dateKey)

		result.Agendas = append(result.Agendas, &agenda.Agenda{
			MeetingDate: opt.Date,
			Entries:     parsed.Entries,
			FetchedAt:   time.Now().UTC(),
		})
	}
	return nil
}

// loadAgenda picks a meeting in the dropdown and returns the reloaded page HTML
func (s *Scraper) loadAgenda(ctx context.Context, page *rod.Page, value string) (string, error) {
	p := page.Timeout(s.cfg.Timeout)

	sel, err := p.Element(agendaSelectSelector)
	if err != nil {
		return "", fmt.Errorf("finding agenda dropdown: %w", err)
	}

	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := sel.Select([]string{fmt.Sprintf(`option[value=%q]`, value)}, true, rod.SelectorTypeCSSSector); err != nil {
		return "", fmt.Errorf("selecting agenda: %w", err)
	}
	wait()

	if _, err := p.Element(meetingAgendaID); err != nil {
		return "", fmt.Errorf("waiting for agenda: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.cfg.Settle):
	}

	return p.HTML()
}

// rawOption is one entry of the agenda dropdown as rendered
type rawOption struct {
	Value string
	Label string
}

// agendaOption is a dropdown entry with its parsed meeting date
type agendaOption struct {
	Value string
	Date  time.Time
}

func readOptions(page *rod.Page) ([]rawOption, error) {
	els, err := page.Elements(agendaSelectSelector + " option")
	if err != nil {
		return nil, fmt.Errorf("listing agenda options: %w", err)
	}
	options := make([]rawOption, 0, len(els))
	for _, el := range els {
		value, err := el.Attribute("value")
		if err != nil {
			return nil, fmt.Errorf("reading option value: %w", err)
		}
		label, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("reading option label: %w", err)
		}
		opt := rawOption{Label: strings.TrimSpace(label)}
		if value != nil {
			opt.Value = *value
		}
		options = append(options, opt)
	}
	return options, nil
}

// selectOptions keeps dated dropdown entries on or before target, oldest first.
// Unparseable labels are reported as warnings rather than failing the run.
func selectOptions(raw []rawOption, target time.Time) ([]agendaOption, []string) {
	var warnings []string
	options := make([]agendaOption, 0, len(raw))
	for _, r := range raw {
		if r.Value == "" || strings.Contains(r.Label, "View Another") {
			continue
		}
		date, err := agenda.ParseMeetingDate(r.Label)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not parse date from: %s", r.Label))
			continue
		}
		if date.After(target) {
			continue
		}
		options = append(options, agendaOption{Value: r.Value, Date: date})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Date.Before(options[j].Date)
	})
	return options, warnings
}
