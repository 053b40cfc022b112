package domain

import (
	"errors"
	"time"
)

// RemoteDoc is the document-store shape a Remote Gateway deals in: a
// loosely-typed bag of fields, exactly as the spec's §6 contract
// describes ("extra fields are tolerated on read"). Progress documents
// are validated with ParseRemoteProgress before the resolver ever sees
// them.
type RemoteDoc map[string]any

// RemoteProgress is a validated, strongly-typed remote progress document:
// the output of the §4.5 step-1 validity gate.
type RemoteProgress struct {
	ID        string
	UserID    string
	LessonID  string
	Percent   int
	UpdatedAt time.Time
}

// ParseRemoteProgress validates a RemoteDoc against the §4.5 validity
// gate: id, userId, lessonId, progressPercent, and updatedAt must all be
// present, non-empty/non-null, and well-typed. A malformed timestamp is
// treated the same as a missing field.
func ParseRemoteProgress(doc RemoteDoc) (RemoteProgress, error) {
	id, ok := asNonEmptyString(doc["id"])
	if !ok {
		return RemoteProgress{}, NewMalformedRemoteDocumentError("missing or empty id")
	}
	userID, ok := asNonEmptyString(doc["userId"])
	if !ok {
		return RemoteProgress{}, NewMalformedRemoteDocumentError("missing or empty userId")
	}
	lessonID, ok := asNonEmptyString(doc["lessonId"])
	if !ok {
		return RemoteProgress{}, NewMalformedRemoteDocumentError("missing or empty lessonId")
	}
	percent, ok := asInt(doc["progressPercent"])
	if !ok {
		return RemoteProgress{}, NewMalformedRemoteDocumentError("missing or invalid progressPercent")
	}
	updatedAtRaw, ok := doc["updatedAt"]
	if !ok || updatedAtRaw == nil {
		return RemoteProgress{}, NewMalformedRemoteDocumentError("missing updatedAt")
	}
	updatedAt, err := parseInstant(updatedAtRaw)
	if err != nil {
		return RemoteProgress{}, NewMalformedRemoteDocumentError("malformed updatedAt: " + err.Error())
	}

	return RemoteProgress{
		ID:        id,
		UserID:    userID,
		LessonID:  lessonID,
		Percent:   ClampPercent(percent),
		UpdatedAt: updatedAt,
	}, nil
}

// ParseRemoteTimestamp parses a remote document's timestamp field,
// accepting the same shapes ParseRemoteProgress does (RFC 3339 string or
// time.Time). Exposed for callers outside this package that build
// partial remote records from other document shapes (users, lessons).
func ParseRemoteTimestamp(v any) (time.Time, error) {
	return parseInstant(v)
}

func asNonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func parseInstant(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		t, ok := v.(time.Time)
		if !ok {
			return time.Time{}, errors.New("updatedAt is not a string or time.Time")
		}
		return t.Truncate(time.Millisecond), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.Truncate(time.Millisecond), nil
}
