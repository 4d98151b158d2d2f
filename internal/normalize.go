package internal

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vdl-data/lux-parking-poller/internal/feed"
)

// ErrNotYetUsable marks an entry whose coordinates are missing. Such lots
// are filtered out of the cycle, not treated as hard failures.
var ErrNotYetUsable = errors.New("coordinates missing, lot not yet usable")

// NormalizeError carries the best-known lot name so the skip can be logged
// against something identifiable.
type NormalizeError struct {
	LotName string
	Cause   error
}

func NewNormalizeError(lotName string, cause error) *NormalizeError {
	return &NormalizeError{LotName: lotName, Cause: cause}
}

func (e *NormalizeError) Error() string {
	if e.LotName == "" {
		return fmt.Sprintf("error processing entry for unknown parking: %v", e.Cause)
	}

	return fmt.Sprintf("error processing entry for parking %q: %v", e.LotName, e.Cause)
}

func (e *NormalizeError) Unwrap() error { return e.Cause }

func (e *NormalizeError) Is(target error) bool {
	var t *NormalizeError
	return errors.As(target, &t)
}

// Normalize maps one raw feed entry to a validated lot plus a reading
// stamped with the cycle tick. Faults stay within the entry: the caller
// keeps going with the rest of the batch on any returned error.
func Normalize(entry feed.RawEntry, polledAt time.Time) (*Lot, *Reading, error) {
	name, ok := entry[feed.FieldTitle]
	if !ok || name == "" {
		return nil, nil, NewNormalizeError("", errors.New("entry has no title"))
	}

	var id int
	if name == BeggenLotName {
		id = BeggenLotId
	} else {
		raw, err := requireField(entry, feed.FieldId)
		if err != nil {
			return nil, nil, NewNormalizeError(name, err)
		}
		id, err = strconv.Atoi(raw)
		if err != nil {
			return nil, nil, NewNormalizeError(name, fmt.Errorf("invalid lot id %q", raw))
		}
	}

	free, err := optionalInt(entry, feed.FieldFree)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	total, err := optionalInt(entry, feed.FieldTotal)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	full, err := optionalFlag(entry, feed.FieldFull)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	info, err := requireField(entry, feed.FieldInfo)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	price, err := requireField(entry, feed.FieldPrice)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	lat, err := optionalFloat(entry, feed.FieldLatitude)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	long, err := optionalFloat(entry, feed.FieldLongitude)
	if err != nil {
		return nil, nil, NewNormalizeError(name, err)
	}

	if lat == nil || long == nil {
		return nil, nil, NewNormalizeError(name, ErrNotYetUsable)
	}

	lot := &Lot{
		Id:        id,
		Name:      name,
		Latitude:  *lat,
		Longitude: *long,
		Price:     price,
		Info:      info,
	}

	reading := &Reading{
		LotId:    id,
		Free:     free,
		Total:    total,
		Full:     full,
		PolledAt: polledAt.Truncate(time.Minute),
	}

	return lot, reading, nil
}

func requireField(entry feed.RawEntry, field string) (string, error) {
	v, ok := entry[field]
	if !ok {
		return "", fmt.Errorf("field %q missing", field)
	}

	return v, nil
}

// optionalInt parses a numeric field, mapping an empty string to nil rather
// than zero. A missing key is still an error.
func optionalInt(entry feed.RawEntry, field string) (*int, error) {
	raw, err := requireField(entry, field)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("field %q is not numeric: %q", field, raw)
	}

	return &v, nil
}

// optionalFlag interprets the numeric flag field as a boolean, zero being
// false and anything else true.
func optionalFlag(entry feed.RawEntry, field string) (*bool, error) {
	v, err := optionalInt(entry, field)
	if err != nil || v == nil {
		return nil, err
	}

	b := *v != 0
	return &b, nil
}

func optionalFloat(entry feed.RawEntry, field string) (*float64, error) {
	raw, err := requireField(entry, field)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("field %q is not a coordinate: %q", field, raw)
	}

	return &v, nil
}
