package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TripContext is the canonical mutable record of what is known about the
// current trip. It is exclusively owned by one session; specialists and tools
// receive a reference and mutate it in place, serialized turn-by-turn.
type TripContext struct {
	Origin          string  `json:"origin,omitempty"`
	DestinationCity string  `json:"destinationCity,omitempty"`
	StartDate       string  `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate         string  `json:"endDate,omitempty"`   // YYYY-MM-DD
	Adults          int     `json:"adults,omitempty"`
	BudgetAmount    float64 `json:"budgetAmount,omitempty"`
	Currency        string  `json:"currency,omitempty"`

	BookingConfirmed bool `json:"bookingConfirmed,omitempty"`

	Itinerary              []Day           `json:"itinerary,omitempty"`
	ItineraryStatus        ItineraryStatus `json:"itineraryStatus"`
	LastItinerarySignature string          `json:"lastItinerarySignature,omitempty"`
}

type ItineraryStatus string

const (
	ItineraryAbsent ItineraryStatus = "absent"
	ItineraryFresh  ItineraryStatus = "fresh"
	ItineraryStale  ItineraryStatus = "stale"
)

// Day is one day of a captured itinerary. Segment slices are possibly empty
// but never nil.
type Day struct {
	Day       int      `json:"day,omitempty"`
	Date      string   `json:"date,omitempty"` // YYYY-MM-DD
	Morning   []string `json:"morning"`
	Afternoon []string `json:"afternoon"`
	Evening   []string `json:"evening"`
}

// Normalize guarantees segment slices are non-nil.
func (d *Day) Normalize() {
	if d.Morning == nil {
		d.Morning = []string{}
	}
	if d.Afternoon == nil {
		d.Afternoon = []string{}
	}
	if d.Evening == nil {
		d.Evening = []string{}
	}
}

// Empty reports whether all three segments carry no activities.
func (d Day) Empty() bool {
	return len(d.Morning) == 0 && len(d.Afternoon) == 0 && len(d.Evening) == 0
}

// SlotPatch is a sparse slot update. Nil fields are no-ops, not clears. The
// patch is assumed pre-validated; the capture boundary rejects type and
// format violations before a patch is built.
type SlotPatch struct {
	OriginCity      *string  `json:"originCity,omitempty"`
	DestinationCity *string  `json:"destinationCity,omitempty"`
	StartDate       *string  `json:"startDate,omitempty"`
	EndDate         *string  `json:"endDate,omitempty"`
	Adults          *int     `json:"adults,omitempty"`
	BudgetAmount    *float64 `json:"budgetAmount,omitempty"`
	Currency        *string  `json:"currency,omitempty"`
}

func (p SlotPatch) IsZero() bool {
	return p.OriginCity == nil &&
		p.DestinationCity == nil &&
		p.StartDate == nil &&
		p.EndDate == nil &&
		p.Adults == nil &&
		p.BudgetAmount == nil &&
		p.Currency == nil
}

const DateLayout = "2006-01-02"

var (
	ErrInconsistentDates = errors.New("end date precedes start date")
	ErrInvalidStatus     = errors.New("itinerary status inconsistent")
)

func NewTripContext() *TripContext {
	t := &TripContext{ItineraryStatus: ItineraryAbsent}
	t.LastItinerarySignature = t.Signature()
	return t
}

// Signature is the deterministic fingerprint over the critical slot subset
// {destinationCity, startDate, endDate, adults, budgetAmount}. The field
// order is fixed so the value is stable across restarts.
func (t *TripContext) Signature() string {
	if t == nil {
		return ""
	}
	return strings.Join([]string{
		"dest=" + t.DestinationCity,
		"start=" + t.StartDate,
		"end=" + t.EndDate,
		"adults=" + strconv.Itoa(t.Adults),
		"budget=" + strconv.FormatFloat(t.BudgetAmount, 'f', -1, 64),
	}, "|")
}

// ApplyUpdate merges a sparse patch into the context. Only non-nil fields
// overwrite. It recomputes the critical-slot signature and, when the
// signature moved away from the one the itinerary was produced under, marks
// the itinerary stale (an empty itinerary stays absent). Returns the new
// signature and whether it changed.
func (t *TripContext) ApplyUpdate(patch SlotPatch) (string, bool) {
	if patch.OriginCity != nil {
		t.Origin = *patch.OriginCity
	}
	if patch.DestinationCity != nil {
		t.DestinationCity = *patch.DestinationCity
	}
	if patch.StartDate != nil {
		t.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		t.EndDate = *patch.EndDate
	}
	if patch.Adults != nil {
		t.Adults = *patch.Adults
	}
	if patch.BudgetAmount != nil {
		t.BudgetAmount = *patch.BudgetAmount
	}
	if patch.Currency != nil {
		t.Currency = *patch.Currency
	}

	sig := t.Signature()
	changed := sig != t.LastItinerarySignature
	if changed {
		if len(t.Itinerary) > 0 {
			t.ItineraryStatus = ItineraryStale
		} else {
			t.ItineraryStatus = ItineraryAbsent
		}
		t.LastItinerarySignature = sig
	}
	return sig, changed
}

// MarkItinerary replaces the itinerary wholesale (never a day-by-day merge),
// marks it fresh and records the signature it was produced under. Days with
// no content at all are dropped first; if nothing survives, the itinerary is
// absent.
func (t *TripContext) MarkItinerary(days []Day) {
	kept := make([]Day, 0, len(days))
	for _, d := range days {
		d.Normalize()
		if d.Empty() {
			continue
		}
		kept = append(kept, d)
	}

	if len(kept) == 0 {
		t.Itinerary = nil
		t.ItineraryStatus = ItineraryAbsent
		t.LastItinerarySignature = t.Signature()
		return
	}

	t.Itinerary = kept
	t.ItineraryStatus = ItineraryFresh
	t.LastItinerarySignature = t.Signature()
}

// ConfirmBooking flips bookingConfirmed exactly once, on an explicit true
// only. A false or absent confirmation is a silent no-op.
func (t *TripContext) ConfirmBooking(confirmed bool) {
	if !confirmed {
		return
	}
	t.BookingConfirmed = true
}

// BookingPrerequisitesMet reports whether the minimum slots for accepting a
// booking confirmation are known.
func (t *TripContext) BookingPrerequisitesMet() bool {
	return t != nil &&
		strings.TrimSpace(t.DestinationCity) != "" &&
		strings.TrimSpace(t.StartDate) != "" &&
		strings.TrimSpace(t.EndDate) != ""
}

// MissingCriticalSlots lists the slots still needed before an itinerary can
// be generated. A budget amount with no currency counts as incomplete; the
// caller asks rather than defaulting.
func (t *TripContext) MissingCriticalSlots() []string {
	var missing []string
	if t == nil {
		return []string{"origin", "destination", "startDate", "endDate", "adults", "budget"}
	}
	if strings.TrimSpace(t.Origin) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(t.DestinationCity) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(t.StartDate) == "" {
		missing = append(missing, "startDate")
	}
	if strings.TrimSpace(t.EndDate) == "" {
		missing = append(missing, "endDate")
	}
	if t.Adults <= 0 {
		missing = append(missing, "adults")
	}
	if t.BudgetAmount <= 0 {
		missing = append(missing, "budget")
	} else if strings.TrimSpace(t.Currency) == "" {
		missing = append(missing, "currency")
	}
	return missing
}

// DatesConsistent reports whether endDate does not precede startDate. Dates
// that are absent or unparseable are not this check's concern.
func (t *TripContext) DatesConsistent() bool {
	if t == nil || t.StartDate == "" || t.EndDate == "" {
		return true
	}
	start, err := time.Parse(DateLayout, t.StartDate)
	if err != nil {
		return true
	}
	end, err := time.Parse(DateLayout, t.EndDate)
	if err != nil {
		return true
	}
	return !end.Before(start)
}

func (t *TripContext) Validate() error {
	if t == nil {
		return errors.New("nil trip context")
	}
	if !t.DatesConsistent() {
		return fmt.Errorf("%w: start=%s end=%s", ErrInconsistentDates, t.StartDate, t.EndDate)
	}
	if t.Adults < 0 {
		return fmt.Errorf("adults must not be negative, got %d", t.Adults)
	}
	switch t.ItineraryStatus {
	case ItineraryFresh:
		if len(t.Itinerary) == 0 {
			return fmt.Errorf("%w: fresh with empty itinerary", ErrInvalidStatus)
		}
		if t.LastItinerarySignature != t.Signature() {
			return fmt.Errorf("%w: fresh but critical slots moved", ErrInvalidStatus)
		}
	case ItineraryStale:
		if len(t.Itinerary) == 0 {
			return fmt.Errorf("%w: stale with empty itinerary", ErrInvalidStatus)
		}
	case ItineraryAbsent, "":
		if len(t.Itinerary) > 0 {
			return fmt.Errorf("%w: absent with %d itinerary days", ErrInvalidStatus, len(t.Itinerary))
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, t.ItineraryStatus)
	}
	return nil
}
