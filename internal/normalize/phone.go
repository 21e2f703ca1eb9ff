package normalize

import (
	"github.com/nyaruka/phonenumbers"
	"github.com/rotisserie/eris"
)

// ErrPhoneUndetermined signals that a phone number could not be parsed
// under either attempt below. Criteria treat this as Undetermined, never
// as Disagree.
var ErrPhoneUndetermined = eris.New("normalize: phone undetermined")

// Phone parses a raw phone number and returns its E.164 form. It tries a
// bare international parse first; if that fails (the number has no leading
// "+" and no unambiguous country code), it retries using the alpha-2 code
// derived from the company's country field as a region hint. If both
// attempts fail, it returns ErrPhoneUndetermined rather than guessing.
func Phone(raw, country string) (string, error) {
	if num, err := phonenumbers.Parse(raw, ""); err == nil {
		return phonenumbers.Format(num, phonenumbers.E164), nil
	}

	region := CountryAlpha2(country)
	if region == "" {
		return "", ErrPhoneUndetermined
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrPhoneUndetermined
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
