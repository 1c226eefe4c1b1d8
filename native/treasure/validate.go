package treasure

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"treasurechain/native/common"
)

// Display field limits, in characters.
const (
	MaxTitleLength       = 55
	MaxDescriptionLength = 650
	MaxURLLength         = 100
	MaxCategoryLength    = 50
	MaxSecretLength      = 256
	MaxCrewFieldLength   = 256
	MaxLevel             = 10
)

// normalizeText trims and NFC-normalises a display field and enforces its
// character limit. Control characters other than newlines are rejected.
func normalizeText(field, value string, limit int) (string, error) {
	if !utf8.ValidString(value) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", common.ErrValidation, field)
	}
	out := norm.NFC.String(strings.TrimSpace(value))
	for _, r := range out {
		if unicode.IsControl(r) && r != '\n' {
			return "", fmt.Errorf("%w: %s contains control characters", common.ErrValidation, field)
		}
	}
	if utf8.RuneCountInString(out) > limit {
		return "", fmt.Errorf("%w: max length of %s is %d characters", common.ErrValidation, field, limit)
	}
	return out, nil
}

// validateLocation rejects out-of-range coordinates and Null Island axes.
func validateLocation(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return ErrInvalidLocation
	}
	if lat < -90 || lat > 90 || lat == 0 {
		return ErrInvalidLocation
	}
	if lon < -180 || lon > 180 || lon == 0 {
		return ErrInvalidLocation
	}
	return nil
}

func normalizeUpdate(u TreasureUpdate) (TreasureUpdate, error) {
	var err error
	if u.Title, err = normalizeText("title", u.Title, MaxTitleLength); err != nil {
		return u, err
	}
	if u.Description, err = normalizeText("description", u.Description, MaxDescriptionLength); err != nil {
		return u, err
	}
	if u.ImageURL, err = normalizeText("image url", u.ImageURL, MaxURLLength); err != nil {
		return u, err
	}
	if u.VideoURL, err = normalizeText("video url", u.VideoURL, MaxURLLength); err != nil {
		return u, err
	}
	if u.MapURL, err = normalizeText("treasure map url", u.MapURL, MaxURLLength); err != nil {
		return u, err
	}
	if u.Category, err = normalizeText("category", u.Category, MaxCategoryLength); err != nil {
		return u, err
	}
	if u.Level > MaxLevel {
		return u, fmt.Errorf("%w: level must be between 0 and %d", common.ErrValidation, MaxLevel)
	}
	return u, nil
}

// checkPayee rejects accounts the contract could never pay: itself and
// accounts that have not been opened.
func (e *Engine) checkPayee(field string, addr [20]byte) error {
	if addr == e.contract {
		return fmt.Errorf("%w: %s cannot be the contract account", common.ErrValidation, field)
	}
	exists, err := e.state.AccountExists(addr)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, field)
	}
	return nil
}
