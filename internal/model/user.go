package model

import (
	"strings"
	"time"
)

// DietaryPreference is the meal choice submitted to the lunch form.
type DietaryPreference string

const (
	DietVeg    DietaryPreference = "Veg"
	DietNonVeg DietaryPreference = "Non Veg"
)

// User represents a lunch-service enrollment.
type User struct {
	TelegramID        int64             `gorm:"primaryKey;autoIncrement:false"`
	FullName          string            `gorm:"size:255;not null"`
	Email             string            `gorm:"size:255;not null"`
	DietaryPreference DietaryPreference `gorm:"size:16;not null"`
	PreferredDays     string            `gorm:"size:128;not null"` // comma-separated lowercase weekday names
	IsEnrolled        bool              `gorm:"not null;default:true"`
	IsVerified        bool              `gorm:"not null;default:false"`
	CreatedAt         time.Time         `gorm:"not null"`
	UpdatedAt         time.Time         `gorm:"not null"`
}

// PreferredDayList splits the stored day string into individual day names.
func (u User) PreferredDayList() []string {
	return SplitDays(u.PreferredDays)
}

// PrefersDay reports whether the given lowercase weekday name is one of the
// user's preferred lunch days. An empty day set never matches.
func (u User) PrefersDay(day string) bool {
	for _, d := range u.PreferredDayList() {
		if d == day {
			return true
		}
	}
	return false
}

// SplitDays parses a comma-separated day string, dropping empty entries.
func SplitDays(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// JoinDays is the inverse of SplitDays.
func JoinDays(days []string) string {
	var cleaned []string
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		cleaned = append(cleaned, d)
	}
	return strings.Join(cleaned, ",")
}
