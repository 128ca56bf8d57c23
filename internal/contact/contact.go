// Package contact resolves WhatsApp links for sellers.
package contact

import (
	"strings"
	"unicode"

	"floreria/internal/dto"
)

// minPhoneDigits is the shortest digit run accepted as a phone number.
const minPhoneDigits = 10

// Directory looks up a seller's phone number. The seller's own contact_info
// wins; the configured fallback map covers sellers that have none.
type Directory struct {
	fallback map[uint]string
}

func NewDirectory(fallback map[uint]string) *Directory {
	clean := make(map[uint]string, len(fallback))
	for id, p := range fallback {
		if digits := Digits(p); digits != "" {
			clean[id] = digits
		}
	}
	return &Directory{fallback: clean}
}

// Phone returns the digits to dial for s and whether one was found.
func (d *Directory) Phone(s dto.SellerResponse) (string, bool) {
	if p := PhoneIn(s.ContactInfo); p != "" {
		return p, true
	}
	p, ok := d.fallback[s.ID]
	return p, ok
}

// Link returns the wa.me link for s, or "" when no number is known.
func (d *Directory) Link(s dto.SellerResponse) string {
	p, ok := d.Phone(s)
	if !ok {
		return ""
	}
	return WhatsAppLink(p)
}

// Entry is one row of the contact page.
type Entry struct {
	Seller dto.SellerResponse `json:"seller"`
	Phone  string             `json:"phone,omitempty"`
	Link   string             `json:"link,omitempty"`
}

// Entries lists active sellers with their resolved links.
func (d *Directory) Entries(sellers []dto.SellerResponse) []Entry {
	out := make([]Entry, 0, len(sellers))
	for _, s := range sellers {
		if !s.IsActive {
			continue
		}
		e := Entry{Seller: s}
		if p, ok := d.Phone(s); ok {
			e.Phone, e.Link = p, WhatsAppLink(p)
		}
		out = append(out, e)
	}
	return out
}

// WhatsAppLink builds https://wa.me/<digits>.
func WhatsAppLink(phone string) string { return "https://wa.me/" + Digits(phone) }

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneIn extracts the first phone-like run from free text. Spaces, dashes,
// dots, parentheses and a leading + may separate the digits. A group long
// enough to be a number by itself is not glued to short groups before it
// unless the run starts with +.
func PhoneIn(text string) string {
	for _, r := range digitRuns(text) {
		if p := r.phone(); p != "" {
			return p
		}
	}
	return ""
}

type digitRun struct {
	intl   bool
	groups []string
}

func (r digitRun) phone() string {
	var b strings.Builder
	for _, g := range r.groups {
		if len(g) >= minPhoneDigits && b.Len() > 0 && !r.intl {
			if b.Len() >= minPhoneDigits {
				break
			}
			b.Reset()
		}
		b.WriteString(g)
	}
	if b.Len() < minPhoneDigits {
		return ""
	}
	return b.String()
}

func isPhoneSeparator(r rune) bool {
	return r == '+' || r == '-' || r == '.' || r == '(' || r == ')' || unicode.IsSpace(r)
}

func digitRuns(text string) []digitRun {
	var (
		runs  []digitRun
		cur   digitRun
		group strings.Builder
	)
	endGroup := func() {
		if group.Len() > 0 {
			cur.groups = append(cur.groups, group.String())
			group.Reset()
		}
	}
	endRun := func() {
		endGroup()
		if len(cur.groups) > 0 {
			runs = append(runs, cur)
		}
		cur = digitRun{}
	}
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			group.WriteRune(r)
		case r == '+' && group.Len() == 0 && len(cur.groups) == 0:
			cur.intl = true
		case isPhoneSeparator(r):
			endGroup()
		default:
			endRun()
		}
	}
	endRun()
	return runs
}
