package domain

import "fmt"

// Page is the screen the client is currently showing.
type Page string

const (
	PageLogin    Page = "login"
	PageRegister Page = "register"
	PageHome     Page = "home"
	PageAbout    Page = "about"
)

// InitialPage is where every session starts.
const InitialPage = PageLogin

var pageTransitions = map[Page][]Page{
	PageLogin:    {PageRegister, PageHome},
	PageRegister: {PageLogin},
	PageHome:     {PageAbout, PageLogin},
	PageAbout:    {PageHome, PageLogin},
}

// ParsePage validates a page name.
func ParsePage(s string) (Page, error) {
	p := Page(s)
	if _, ok := pageTransitions[p]; !ok {
		return "", fmt.Errorf("unknown page %q", s)
	}
	return p, nil
}

// CanNavigate reports whether the UI may move from one page to another.
func (p Page) CanNavigate(to Page) bool {
	for _, next := range pageTransitions[p] {
		if next == to {
			return true
		}
	}
	return false
}

// Navigate returns the destination page or an error for an illegal move.
func (p Page) Navigate(to Page) (Page, error) {
	if !p.CanNavigate(to) {
		return p, fmt.Errorf("cannot navigate from %s to %s", p, to)
	}
	return to, nil
}
