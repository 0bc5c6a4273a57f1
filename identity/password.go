package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/config"
)

// commonPasswords is a short list of the passwords most often seen in
// breach dumps. Comparison is case-insensitive.
var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		123456 password 12345678 qwerty 123456789 12345 1234 111111 1234567
		dragon 123123 baseball abc123 football monkey letmein 696969 shadow
		master 666666 qwertyuiop 123321 mustang 1234567890 michael 654321
		superman 1qaz2wsx 7777777 121212 000000 qazwsx 123qwe killer trustno1
		jordan jennifer zxcvbnm asdfgh hunter buster soccer harley batman
		andrew tigger sunshine iloveyou 2000 charlie robert thomas hockey
		ranger daniel starwars 112233 george computer michelle jessica
		pepper 1111 zxcvbn 555555 11111111 131313 freedom 777777 pass maggie
		159753 aaaaaa ginger princess joshua cheese amanda summer love ashley
		nicole chelsea biteme matthew access yankees 987654321 dallas austin
		thunder taylor matrix minecraft welcome passw0rd password1 password123
		admin administrator changeme gandalf frodo mellon`) {
		commonPasswords[p] = struct{}{}
	}
}

// minSimilarPart ignores username fragments too short to matter.
const minSimilarPart = 3

// CheckPassword reports every policy violation of password into vb under
// field. username and email feed the similarity check.
func CheckPassword(vb *apperr.ValidationBuilder, field string, policy config.PasswordPolicy, password, username, email string) {
	if policy.MinLength > 0 && utf8.RuneCountInString(password) < policy.MinLength {
		vb.Fieldf(field, "must contain at least %d characters", policy.MinLength)
	}

	var letter, digit, upper, symbol bool
	allDigits := password != ""
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
			allDigits = false
			if unicode.IsUpper(r) {
				upper = true
			}
		default:
			symbol = true
			allDigits = false
		}
	}
	if policy.RequireLetter && !letter {
		vb.Field(field, "must contain a letter")
	}
	if policy.RequireDigit && !digit {
		vb.Field(field, "must contain a digit")
	}
	if policy.RequireUpper && !upper {
		vb.Field(field, "must contain an uppercase letter")
	}
	if policy.RequireSymbol && !symbol {
		vb.Field(field, "must contain a symbol")
	}
	if policy.RejectNumeric && allDigits {
		vb.Field(field, "must not be entirely numeric")
	}
	if policy.RejectCommon {
		if _, ok := commonPasswords[strings.ToLower(password)]; ok {
			vb.Field(field, "is too common")
		}
	}
	if policy.RejectSimilar && tooSimilar(password, username, email) {
		vb.Field(field, "is too similar to the username or email")
	}
}

// tooSimilar matches when the password contains, or is contained in, the
// username or the local part of the email.
func tooSimilar(password, username, email string) bool {
	pw := strings.ToLower(password)
	if pw == "" {
		return false
	}
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	for _, part := range []string{strings.ToLower(username), local} {
		if utf8.RuneCountInString(part) < minSimilarPart {
			continue
		}
		if strings.Contains(pw, part) || strings.Contains(part, pw) {
			return true
		}
	}
	return false
}
