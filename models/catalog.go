package models

import (
	"regexp"
	"strings"
)

// ServiceTypes is the fixed list of services a vendor can register for
var ServiceTypes = []string{
	"Electrician",
	"Plumbing",
	"Tiles & Flooring",
	"Hair & Spa",
	"Car & Bike Repair",
	"Legal Services",
	"Digital Marketing",
	"Web Developer",
	"Mobile Repair",
	"Computer Repair/Solutions",
	"Carpenter",
	"Painting Services",
	"Tours & Travels",
	"Catering",
	"AC & Fridge Repair",
	"House Keeping",
	"Electrician (Industrial/Household)",
	"Retailers",
	"Event Organizer",
	"Video & Photography",
	"Fire & Safety",
	"General Insurance",
}

// UserCategories are the labels offered to service seekers
var UserCategories = []string{
	"Individual/Personal",
	"Residential Society",
	"Factory/Industry",
	"College/University",
	"Hospital/Healthcare",
	"Office/Commercial",
}

// Category is a user category label with the slug stored on the user
type Category struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]`)

// CategorySlug lower-cases the label and replaces anything that is not a-z0-9 with '-'
func CategorySlug(label string) string {
	return nonSlug.ReplaceAllString(strings.ToLower(label), "-")
}

// Categories returns the category labels with their slugs
func Categories() []Category {
	out := make([]Category, 0, len(UserCategories))
	for _, label := range UserCategories {
		out = append(out, Category{Label: label, Value: CategorySlug(label)})
	}
	return out
}

// IsServiceType reports whether s is in the service catalog
func IsServiceType(s string) bool {
	for _, t := range ServiceTypes {
		if t == s {
			return true
		}
	}
	return false
}
