package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/pkg/errs"
)

const bookingIDPrefix = "BK"

var bookingIDPattern = regexp.MustCompile(`^BK[0-9A-Z]+[0-9A-F]{4}$`)

// BookingID is the human-shareable order reference: "BK", the creation time in unix
// milliseconds as upper-case base36, then four upper-case hex characters.
type BookingID string

// NewBookingID generates a booking id for an order created at now.
func NewBookingID(now time.Time) (BookingID, error) {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate booking id: %w", err)
	}

	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return BookingID(bookingIDPrefix + stamp + strings.ToUpper(hex.EncodeToString(suffix))), nil
}

// ParseBookingID validates the textual form.
func ParseBookingID(s string) (BookingID, error) {
	id := BookingID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

func (b BookingID) String() string {
	return string(b)
}

func (b BookingID) Validate() error {
	if b == "" {
		return errs.NewValueIsRequiredError("bookingId")
	}
	if !bookingIDPattern.MatchString(string(b)) {
		return errs.NewValueIsInvalidErrorWithCause("bookingId", fmt.Errorf("%q is not a booking id", string(b)))
	}
	return nil
}
