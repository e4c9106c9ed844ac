package account

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/madamaths/madamaths/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	identifierTag  = "identifier"
	identifierText = "one of username or student_code is required"

	classForStudentsTag  = "class_students_only"
	classForStudentsText = "only students can be assigned to a class"

	// password policy
	pwdMinLen        = 8
	pwdMinLenText    = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)
	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"
	pwdComplexText   = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	pwdAttrSimText   = "password cannot be similar to account attributes"
	pwdReusedText    = "new password must differ from the current and default passwords"
	specialRegex     = regexp.MustCompile("[^A-Za-z0-9]")
	pwdMaxSim        = .7
)

// InitValidators registers the account validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(newAccountStructValidation, NewAccount{})
	core.RegisterCustomTranslation(validate, translator, identifierTag, identifierText)
	core.RegisterCustomTranslation(validate, translator, classForStudentsTag, classForStudentsText)
}

// Custom Validators

func roleValidation(fl validator.FieldLevel) bool {
	if role, ok := fl.Field().Interface().(Role); ok {
		return role.Valid()
	}
	return false
}

// newAccountStructValidation does NewAccount's struct level validation
func newAccountStructValidation(sl validator.StructLevel) {
	na, ok := sl.Current().Interface().(NewAccount)
	if !ok {
		return
	}
	// one of Username or StudentCode is required
	if na.Username == "" && na.StudentCode == "" {
		sl.ReportError(na.Username, "username", "Username", identifierTag, "")
		sl.ReportError(na.StudentCode, "student_code", "StudentCode", identifierTag, "")
	}
	if na.ClassID != 0 && na.Role != RoleStudent {
		sl.ReportError(na.ClassID, "class_id", "ClassID", classForStudentsTag, "")
	}
}

// checkPasswordPolicy applies the password policy to pwd:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no account attrs similarity
// It returns an empty string when pwd is acceptable.
func checkPasswordPolicy(pwd string, attrs ...string) string {
	var (
		digitCount         int
		hasUpper, hasLower bool
	)

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return pwdMinLenText
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceText
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
	}
	if digitCount == pwdLen {
		return pwdNotAllNumText
	}
	if !(hasUpper && hasLower && digitCount > 0 && specialRegex.MatchString(pwd)) {
		return pwdComplexText
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimText
		}
	}
	return ""
}
