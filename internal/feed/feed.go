package feed

import (
	"bytes"
	"fmt"
	"github.com/mmcdole/gofeed"
)

// Field keys as the feed names them. The vdlxml ones live in the feed's own
// XML namespace; Decode flattens them to prefix_name form.
const (
	FieldTitle     = "title"
	FieldId        = "id"
	FieldFree      = "vdlxml_actuel"
	FieldTotal     = "vdlxml_total"
	FieldFull      = "vdlxml_complet"
	FieldInfo      = "vdlxml_divers"
	FieldPrice     = "vdlxml_paiement"
	FieldLatitude  = "vdlxml_localisationlatitude"
	FieldLongitude = "vdlxml_localisationlongitude"
)

// RawEntry holds one feed item's fields as the feed supplied them, values
// untyped and unvalidated. A key may map to an empty string, which is
// distinct from the key being absent.
type RawEntry map[string]string

type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("feed unparsable: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Decode parses RSS bytes into raw entries. Parsing is lenient: unknown or
// malformed sub-elements are skipped per item, only a document the XML
// parser cannot read at all yields a *DecodeError.
func Decode(data []byte) ([]RawEntry, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}

	entries := make([]RawEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		entry := RawEntry{
			FieldTitle: item.Title,
			FieldId:    item.GUID,
		}

		for prefix, fields := range item.Extensions {
			for name, values := range fields {
				if len(values) == 0 {
					continue
				}
				entry[prefix+"_"+name] = values[0].Value
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
