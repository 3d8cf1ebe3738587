package importer

import (
	"strconv"
	"strings"
)

// attendeeDataFrom normalizes a raw row into the canonical AttendeeData
// record. The mapper is total: absent optional fields default, nothing
// errors here. Required-field enforcement happens at creation time so the
// failure can name the offending field.
func (imp *Importer) attendeeDataFrom(row Row) AttendeeData {
	name, hasName := row[ColAttendeeName]
	email, hasEmail := row[ColEmail]

	data := AttendeeData{
		FullName:      name,
		HasFullName:   hasName,
		Email:         email,
		HasEmail:      hasEmail,
		UserID:        parseUserID(row[ColUserID]),
		OrderID:       row[ColOrderID],
		OrderStatus:   row[ColOrderStatus],
		RefundOrderID: row[ColRefundOrder],
		SendEmail:     imp.willSendEmail(row),
	}

	// Opt-in defaults to false when absent or empty, which makes optout
	// default to true: attendees are not publicly listed unless the row
	// says so.
	optIn := false
	if v := row[ColOptIn]; v != "" {
		optIn = Truthy(v)
	}
	data.Optout = !optIn

	if imp.cfg.Provider == ProviderRSVP {
		data.Going = parseGoing(row)
	}

	return data
}

// parseGoing reads the RSVP-only going flag. An empty or absent value means
// attending; that default is intentional and mirrors the RSVP form, where
// submitting without a choice registers a yes.
func parseGoing(row Row) bool {
	v, ok := row[ColGoing]
	if !ok || v == "" {
		return true
	}
	return Truthy(v) || strings.EqualFold(strings.TrimSpace(v), "going")
}

// parseUserID coerces the user_id column; anything non-numeric is treated
// as unresolved (0).
func parseUserID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// willSendEmail decides whether imported attendees get emailed: the row's
// send_email column wins when present and non-empty, otherwise the
// run-level toggle applies.
func (imp *Importer) willSendEmail(row Row) bool {
	if v := row[ColSendEmail]; v != "" {
		return Truthy(v)
	}
	return imp.cfg.SendEmail
}
