package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Normalize NFC-normalizes user-facing text (display names, lesson
// titles) before it is stored or hashed, so two documents that differ
// only in Unicode composition compare equal. Mirrors the normalization
// boundary the teacher applies in its canonical-JSON encoder, without
// the generic IR-value machinery that encoder used — this core only
// ever canonicalizes a handful of fixed record shapes.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// ProgressPayload is the wire shape journaled for upload: exactly the
// fields named in §6, nothing more.
type ProgressPayload struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	LessonID        string `json:"lessonId"`
	ProgressPercent int    `json:"progressPercent"`
	UpdatedAt       string `json:"updatedAt"`
}

// MarshalProgressPayload produces the canonical journal payload string for
// a Progress row: fixed field order, RFC 3339 nanosecond timestamp, no
// HTML escaping. This is the "canonical serialization" §4.2 step 4 refers
// to — deterministic so identical progress states always journal
// byte-identical payloads.
func MarshalProgressPayload(p Progress) (string, error) {
	payload := ProgressPayload{
		ID:              p.ID,
		UserID:          p.UserID,
		LessonID:        p.LessonID,
		ProgressPercent: p.Percent,
		UpdatedAt:       p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("marshal progress payload: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// UnmarshalProgressPayload parses a journaled payload back into its
// fields. Used by the engine's upload phase to hand the gateway a plain
// document.
func UnmarshalProgressPayload(data string) (ProgressPayload, error) {
	var payload ProgressPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return ProgressPayload{}, fmt.Errorf("unmarshal progress payload: %w", err)
	}
	return payload, nil
}
