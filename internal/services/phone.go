package services

import (
	"regexp"
	"strings"
)

// bdMobilePattern matches a Bangladeshi mobile number in international form.
var bdMobilePattern = regexp.MustCompile(`^\+8801\d{9}$`)

// NormalizePhone rewrites a locally formatted number (leading 0) to
// international form before validation. Other inputs pass through untouched
// and are left for the validator to reject.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "0") {
		return "+88" + phone
	}
	return phone
}

// IsValidBDMobile reports whether the number is a valid Bangladeshi mobile
// number in international form.
func IsValidBDMobile(phone string) bool {
	return bdMobilePattern.MatchString(phone)
}
