// Package validation checks store and account forms locally. Nothing here touches the
// network: a form that fails validation is never sent.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/martory/go-tenant-session/stores"
	"github.com/martory/go-tenant-session/users"
)

var (
	cnicPattern          = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)
	pkMobilePattern      = regexp.MustCompile(`^(\+92|0)3\d{9}$`)
	internationalPattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	subdomainPattern     = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
)

// Subdomains that would collide with platform hosts
var reservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
	"app":   true,
}

// FieldErrors maps a form field to its message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when there are no field errors
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Validator validates the dashboard forms
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStore checks the store creation form
func (v *Validator) ValidateStore(s stores.Store) error {
	fe := FieldErrors{}
	if strings.TrimSpace(s.StoreName) == "" {
		fe["store_name"] = "store name is required"
	}
	if err := ValidateSubdomain(s.Subdomain); err != nil {
		fe["subdomain"] = err.Error()
	}
	if s.CNIC != "" && !ValidCNIC(s.CNIC) {
		fe["cnic"] = "CNIC must look like 12345-1234567-1"
	}
	if s.Phone != "" && !ValidPhone(s.Phone) {
		fe["phone"] = "invalid phone number"
	}
	if s.Email != "" && !ValidEmail(s.Email) {
		fe["email"] = "invalid email address"
	}
	return fe.Err()
}

// ValidateCredentials checks the login form
func (v *Validator) ValidateCredentials(email, password string) error {
	fe := FieldErrors{}
	if strings.TrimSpace(email) == "" {
		fe["email"] = "email is required"
	} else if !ValidEmail(email) {
		fe["email"] = "invalid email address"
	}
	if password == "" {
		fe["password"] = "password is required"
	}
	return fe.Err()
}

// ValidateRegistration checks the sign-up form
func (v *Validator) ValidateRegistration(name, email, password string) error {
	fe := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		fe["name"] = "name is required"
	}
	if !ValidEmail(email) {
		fe["email"] = "invalid email address"
	}
	if err := users.ValidatePasswordStrength(password); err != nil {
		fe["password"] = err.Error()
	}
	return fe.Err()
}

// ValidCNIC reports whether s is a Pakistani CNIC in 12345-1234567-1 form
func ValidCNIC(s string) bool {
	return cnicPattern.MatchString(strings.TrimSpace(s))
}

// ValidPhone accepts Pakistani mobiles (03xx or +923xx) and international numbers.
// Spaces and dashes are ignored.
func ValidPhone(s string) bool {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	return pkMobilePattern.MatchString(p) || internationalPattern.MatchString(p)
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidateSubdomain checks a tenant routing key
func ValidateSubdomain(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("subdomain is required")
	case s != strings.ToLower(s):
		return fmt.Errorf("subdomain must be lowercase")
	case !subdomainPattern.MatchString(s):
		return fmt.Errorf("subdomain may only contain lowercase letters, digits and inner hyphens")
	case reservedSubdomains[s]:
		return fmt.Errorf("subdomain %q is reserved", s)
	}
	return nil
}
